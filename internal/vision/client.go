// Package vision collects per-image analysis (labels, text, faces,
// moderation flags) for listing images via an external vision service.
package vision

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/rekognition"
)

// Confidence floors applied to service responses.
const (
	LabelConfidenceFloor      = 70
	ModerationConfidenceFloor = 60
)

// Label is one object or scene detected in an image.
type Label struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// TextDetection is one line of text detected in an image. Word-level
// detections are filtered out; only line granularity is kept.
type TextDetection struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ModerationFlag is one content-moderation category raised for an image.
type ModerationFlag struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// ImageAnalysis is the combined result of the four analysis operations for
// one image.
type ImageAnalysis struct {
	URL             string           `json:"url"`
	Labels          []Label          `json:"labels"`
	DetectedText    []TextDetection  `json:"detected_text"`
	FaceCount       int              `json:"face_count"`
	ModerationFlags []ModerationFlag `json:"moderation_flags"`
}

// Analyzer abstracts the vision service so the collector can be tested
// against a fake.
type Analyzer interface {
	Labels(ctx context.Context, image []byte) ([]Label, error)
	Text(ctx context.Context, image []byte) ([]TextDetection, error)
	FaceCount(ctx context.Context, image []byte) (int, error)
	Moderation(ctx context.Context, image []byte) ([]ModerationFlag, error)
}

// RekognitionAnalyzer implements Analyzer against AWS Rekognition.
type RekognitionAnalyzer struct {
	svc *rekognition.Rekognition
}

// NewRekognitionAnalyzer creates an analyzer in the given region using the
// ambient AWS credential chain.
func NewRekognitionAnalyzer(region string) (*RekognitionAnalyzer, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &RekognitionAnalyzer{svc: rekognition.New(sess)}, nil
}

// Labels detects objects and scenes above the label confidence floor.
func (a *RekognitionAnalyzer) Labels(ctx context.Context, image []byte) ([]Label, error) {
	out, err := a.svc.DetectLabelsWithContext(ctx, &rekognition.DetectLabelsInput{
		Image:         &rekognition.Image{Bytes: image},
		MinConfidence: aws.Float64(LabelConfidenceFloor),
	})
	if err != nil {
		return nil, fmt.Errorf("label detection failed: %w", err)
	}

	labels := make([]Label, 0, len(out.Labels))
	for _, l := range out.Labels {
		labels = append(labels, Label{
			Name:       aws.StringValue(l.Name),
			Confidence: aws.Float64Value(l.Confidence),
		})
	}
	return labels, nil
}

// Text detects text in the image, keeping line-level detections only.
func (a *RekognitionAnalyzer) Text(ctx context.Context, image []byte) ([]TextDetection, error) {
	out, err := a.svc.DetectTextWithContext(ctx, &rekognition.DetectTextInput{
		Image: &rekognition.Image{Bytes: image},
	})
	if err != nil {
		return nil, fmt.Errorf("text detection failed: %w", err)
	}

	detections := []TextDetection{}
	for _, d := range out.TextDetections {
		if aws.StringValue(d.Type) != rekognition.TextTypesLine {
			continue
		}
		detections = append(detections, TextDetection{
			Text:       aws.StringValue(d.DetectedText),
			Confidence: aws.Float64Value(d.Confidence),
		})
	}
	return detections, nil
}

// FaceCount returns the number of faces detected in the image.
func (a *RekognitionAnalyzer) FaceCount(ctx context.Context, image []byte) (int, error) {
	out, err := a.svc.DetectFacesWithContext(ctx, &rekognition.DetectFacesInput{
		Image: &rekognition.Image{Bytes: image},
	})
	if err != nil {
		return 0, fmt.Errorf("face detection failed: %w", err)
	}
	return len(out.FaceDetails), nil
}

// Moderation detects content-moderation flags above the moderation floor.
func (a *RekognitionAnalyzer) Moderation(ctx context.Context, image []byte) ([]ModerationFlag, error) {
	out, err := a.svc.DetectModerationLabelsWithContext(ctx, &rekognition.DetectModerationLabelsInput{
		Image:         &rekognition.Image{Bytes: image},
		MinConfidence: aws.Float64(ModerationConfidenceFloor),
	})
	if err != nil {
		return nil, fmt.Errorf("moderation detection failed: %w", err)
	}

	flags := make([]ModerationFlag, 0, len(out.ModerationLabels))
	for _, m := range out.ModerationLabels {
		flags = append(flags, ModerationFlag{
			Name:       aws.StringValue(m.Name),
			Confidence: aws.Float64Value(m.Confidence),
		})
	}
	return flags, nil
}

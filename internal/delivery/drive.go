package delivery

import (
	"bytes"
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveUploader archives run documents into a Drive folder.
type DriveUploader struct {
	svc      *drive.Service
	folderID string
}

// NewDriveUploader creates an uploader. folderID may be empty; files
// then land in the account root.
func NewDriveUploader(ctx context.Context, credentialsFile, folderID string) (*DriveUploader, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveUploader{svc: svc, folderID: folderID}, nil
}

// Upload stores the serialized run document and returns the created
// file's ID.
func (u *DriveUploader) Upload(ctx context.Context, filename string, doc []byte) (string, error) {
	meta := &drive.File{
		Name:     filename,
		MimeType: "application/json",
	}
	if u.folderID != "" {
		meta.Parents = []string{u.folderID}
	}

	file, err := u.svc.Files.Create(meta).
		Media(bytes.NewReader(doc)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	return file.Id, nil
}

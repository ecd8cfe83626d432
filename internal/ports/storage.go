package ports

import (
	"context"
	"io"
)

type PhotoUpload struct {
	ReportID    string
	ItemID      string
	PhotoID     string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type PhotoStorage interface {
	Upload(ctx context.Context, upload PhotoUpload) (publicURL string, err error)
}

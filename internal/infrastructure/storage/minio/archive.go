package minio

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// ReportPrefix roots every archived export.
const ReportPrefix = "reports/"

var ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "invalid archive request")

// ArchiveRequest is one export to store.
type ArchiveRequest struct {
	SessionID   string
	ReportID    string
	Extension   string
	ContentType string
	FileName    string
	Data        []byte
}

// ArchivedObject describes a stored export.
type ArchivedObject struct {
	Bucket       string    `json:"bucket"`
	ObjectKey    string    `json:"object_key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag,omitempty"`
	URL          string    `json:"url,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// ReportArchive stores CSV and PDF exports under
// reports/<session>/<report>.<ext> and hands out presigned download URLs.
type ReportArchive struct {
	client *MinIOClient
	logger logging.Logger
}

func NewReportArchive(client *MinIOClient, log logging.Logger) *ReportArchive {
	return &ReportArchive{client: client, logger: log}
}

// ObjectKey returns the storage key of an export.
func ObjectKey(sessionID, reportID, ext string) string {
	return fmt.Sprintf("%s%s/%s.%s", ReportPrefix, sessionID, reportID, strings.TrimPrefix(ext, "."))
}

// Archive uploads req and returns its location with a presigned URL.  A
// presign failure still reports the stored object, without URL.
func (a *ReportArchive) Archive(ctx context.Context, req *ArchiveRequest) (*ArchivedObject, error) {
	if a.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	if req == nil || req.SessionID == "" || req.ReportID == "" || req.Extension == "" {
		return nil, ErrInvalidRequest
	}

	key := ObjectKey(req.SessionID, req.ReportID, req.Extension)
	opts := minio.PutObjectOptions{ContentType: req.ContentType}
	if req.FileName != "" {
		opts.ContentDisposition = fmt.Sprintf("attachment; filename=%q", req.FileName)
	}

	info, err := a.client.GetClient().PutObject(ctx, a.client.Bucket(), key, bytes.NewReader(req.Data), int64(len(req.Data)), opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "upload failed").WithDetail(key)
	}

	obj := &ArchivedObject{
		Bucket:       a.client.Bucket(),
		ObjectKey:    key,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: time.Now().UTC(),
	}
	if url, err := a.client.GeneratePresignedGetURL(ctx, key, 0); err != nil {
		a.logger.Warn("presign failed", logging.String("object", key), logging.Err(err))
	} else {
		obj.URL = url
	}

	a.logger.Info("export archived",
		logging.SessionID(req.SessionID),
		logging.ReportID(req.ReportID),
		logging.String("object", key),
		logging.Int64("size", obj.Size))
	return obj, nil
}

// Exists reports whether an export was archived.
func (a *ReportArchive) Exists(ctx context.Context, sessionID, reportID, ext string) (bool, error) {
	_, err := a.client.GetClient().StatObject(ctx, a.client.Bucket(), ObjectKey(sessionID, reportID, ext), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeStorageError, "stat failed")
	}
	return true, nil
}

// List returns the exports archived for a session.
func (a *ReportArchive) List(ctx context.Context, sessionID string) ([]*ArchivedObject, error) {
	prefix := ReportPrefix + sessionID + "/"
	out := make([]*ArchivedObject, 0)
	for obj := range a.client.GetClient().ListObjects(ctx, a.client.Bucket(), minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeStorageError, "list failed")
		}
		out = append(out, &ArchivedObject{
			Bucket:       a.client.Bucket(),
			ObjectKey:    obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}
	return out, nil
}

// DeleteSession removes every export of a session.
func (a *ReportArchive) DeleteSession(ctx context.Context, sessionID string) error {
	objects, err := a.List(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		return nil
	}

	ch := make(chan minio.ObjectInfo, len(objects))
	for _, o := range objects {
		ch <- minio.ObjectInfo{Key: o.ObjectKey}
	}
	close(ch)

	var failed []string
	for rerr := range a.client.GetClient().RemoveObjects(ctx, a.client.Bucket(), ch, minio.RemoveObjectsOptions{}) {
		failed = append(failed, rerr.ObjectName)
		a.logger.Warn("remove failed", logging.String("object", rerr.ObjectName), logging.Err(rerr.Err))
	}
	if len(failed) > 0 {
		return errors.New(errors.ErrCodeStorageError, "some exports could not be removed").WithDetail(strings.Join(failed, ","))
	}
	return nil
}

//Personal.AI order the ending

package knowledge

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/clients/gcs"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/apierr"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/logger"
)

// Source yields the raw knowledge document.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Open(context.Context) (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// ObjectSource reads the document from a Cloud Storage object.
type ObjectSource struct {
	Reader gcs.Reader
	Bucket string
	Object string
}

func (s ObjectSource) Name() string { return "gs://" + s.Bucket + "/" + s.Object }

func (s ObjectSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.Reader == nil {
		return nil, fmt.Errorf("no storage reader for %s", s.Name())
	}
	return s.Reader.Open(ctx, s.Bucket, s.Object)
}

// Load reads, decodes and flattens the document. It never fails: any error
// is logged and yields an Unavailable index so the process still starts.
func Load(ctx context.Context, log *logger.Logger, src Source, opts FlattenOptions) *Index {
	if src == nil {
		log.Warn("no knowledge source configured; answering without grounding")
		return Unavailable("", fmt.Errorf("no knowledge source configured"))
	}
	name := src.Name()
	start := time.Now()

	root, err := read(ctx, src)
	if err != nil {
		log.Error("knowledge document unavailable",
			"code", apierr.CodeKnowledgeUnavailable,
			"source", name,
			"error", err,
		)
		return Unavailable(name, err)
	}

	fragments, skipped := flatten(root, opts)
	if skipped > 0 {
		log.Warn("knowledge subtrees beyond depth limit were skipped", "source", name, "skipped", skipped)
	}
	log.Info("knowledge document loaded",
		"source", name,
		"fragments", len(fragments),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return NewIndex(name, fragments)
}

func read(ctx context.Context, src Source) (*Node, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	root, err := Decode(src.Name(), rc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Name(), err)
	}
	return root, nil
}

/*
Package texttrace is an o11y provider that renders completed spans as human
readable text lines on a writer, stderr by default. It keeps diagnostics off
stdout, which carries the document output.
*/
package texttrace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uploadhub/printdocs/o11y"
)

type spanKey struct{}

type Provider struct {
	mu     sync.Mutex
	w      io.Writer
	global map[string]interface{}
}

// New returns a provider writing to stderr.
func New() *Provider {
	return NewWriter(os.Stderr)
}

func NewWriter(w io.Writer) *Provider {
	return &Provider{
		w:      w,
		global: map[string]interface{}{},
	}
}

func (p *Provider) AddGlobalField(key string, val interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.global[key] = val
}

func (p *Provider) StartSpan(ctx context.Context, name string) (context.Context, o11y.Span) {
	parent := p.getSpan(ctx)
	s := &span{
		provider: p,
		name:     name,
		id:       uuid.New(),
		started:  time.Now(),
		fields:   map[string]interface{}{},
	}
	if parent == nil {
		s.traceID = uuid.New()
	} else {
		s.traceID = parent.traceID
		s.parentID = parent.id
	}
	return context.WithValue(ctx, spanKey{}, s), s
}

func (p *Provider) GetSpan(ctx context.Context) o11y.Span {
	if s := p.getSpan(ctx); s != nil {
		return s
	}
	return nil
}

func (p *Provider) getSpan(ctx context.Context) *span {
	if s, ok := ctx.Value(spanKey{}).(*span); ok {
		return s
	}
	return nil
}

func (p *Provider) AddField(ctx context.Context, key string, val interface{}) {
	if s := p.getSpan(ctx); s != nil {
		s.AddField(key, val)
	}
}

func (p *Provider) Log(ctx context.Context, name string, fields ...o11y.Pair) {
	_, s := p.StartSpan(ctx, name)
	for _, f := range fields {
		s.AddField(f.Key, f.Value)
	}
	s.End()
}

func (p *Provider) Close(context.Context) {}

type span struct {
	provider *Provider

	name     string
	id       uuid.UUID
	traceID  uuid.UUID
	parentID uuid.UUID
	started  time.Time

	mu     sync.Mutex
	fields map[string]interface{}
}

func (s *span) AddField(key string, val interface{}) {
	s.AddRawField("app."+key, val)
}

func (s *span) AddRawField(key string, val interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := val.(error); ok {
		val = err.Error()
	}
	s.fields[key] = val
}

func (s *span) End() {
	s.provider.send(s, time.Since(s.started))
}

func (p *Provider) send(s *span, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	buf := new(bytes.Buffer)
	_, _ = fmt.Fprintf(buf, "%s %s %.3fms %s",
		time.Now().Format("15:04:05"),
		shortID(s.traceID),
		float64(duration)/float64(time.Millisecond),
		s.name,
	)
	fields := map[string]interface{}{}
	for k, v := range p.global {
		fields[k] = v
	}
	s.mu.Lock()
	for k, v := range s.fields {
		fields[k] = v
	}
	s.mu.Unlock()
	for _, k := range sortedKeys(fields) {
		_, _ = fmt.Fprintf(buf, " %s=%v", k, fields[k])
	}
	buf.WriteString("\n")
	// a failed diagnostic write should never fail the tool
	_, _ = p.w.Write(buf.Bytes())
}

func shortID(id uuid.UUID) string {
	s := id.String()
	return s[len(s)-5:]
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package export

import (
	"fmt"
	"sort"
	"sync"
)

// DatasetRegistry stores dataset sources by name.
type DatasetRegistry struct {
	mu      sync.RWMutex
	sources map[string]DatasetSource
}

// NewDatasetRegistry creates an empty registry.
func NewDatasetRegistry() *DatasetRegistry {
	return &DatasetRegistry{sources: make(map[string]DatasetSource)}
}

// Register adds a dataset source.
func (r *DatasetRegistry) Register(name string, source DatasetSource) error {
	if name == "" {
		return NewError(KindValidation, "dataset name is required", nil)
	}
	if source == nil {
		return NewError(KindValidation, "dataset source is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[name]; exists {
		return NewError(KindValidation, fmt.Sprintf("dataset %q already registered", name), nil)
	}
	r.sources[name] = source
	return nil
}

// Resolve finds a dataset source by name.
func (r *DatasetRegistry) Resolve(name string) (DatasetSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	source, ok := r.sources[name]
	return source, ok
}

// Names returns the registered dataset names, sorted.
func (r *DatasetRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RendererRegistry stores renderers by format.
type RendererRegistry struct {
	mu        sync.RWMutex
	renderers map[Format]Renderer
}

// NewRendererRegistry creates a registry.
func NewRendererRegistry() *RendererRegistry {
	return &RendererRegistry{renderers: make(map[Format]Renderer)}
}

// NewDefaultRendererRegistry registers the renderers that need no external setup.
func NewDefaultRendererRegistry() *RendererRegistry {
	renderers := NewRendererRegistry()
	_ = renderers.Register(FormatCSV, CSVRenderer{BOM: true})
	_ = renderers.Register(FormatXLSX, XLSXRenderer{})
	return renderers
}

// Register adds a renderer for a format.
func (r *RendererRegistry) Register(format Format, renderer Renderer) error {
	if format == "" {
		return NewError(KindValidation, "renderer format is required", nil)
	}
	if renderer == nil {
		return NewError(KindValidation, "renderer is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.renderers[format]; exists {
		return NewError(KindValidation, fmt.Sprintf("renderer for %q already registered", format), nil)
	}
	r.renderers[format] = renderer
	return nil
}

// Resolve returns the renderer for the format.
func (r *RendererRegistry) Resolve(format Format) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[format]
	return renderer, ok
}

// Formats returns the registered formats, sorted.
func (r *RendererRegistry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]Format, 0, len(r.renderers))
	for format := range r.renderers {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/lifeline/pkg/cache"
	"github.com/matzehuels/lifeline/pkg/config"
	"github.com/matzehuels/lifeline/pkg/errors"
	"github.com/matzehuels/lifeline/pkg/observability"
)

const checkout = `{
  "title": "Checkout",
  "events": [
    {"type": "add_actor", "id": "U", "name": "User"},
    {"type": "add_actor", "id": "S", "name": "Shop"},
    {"type": "message", "from": "U", "to": "S", "text": "order"},
    {"type": "activate_start", "actor": "S"},
    {"type": "section_start", "kind": "alt", "label": "in stock"},
    {"type": "message", "from": "S", "to": "U", "text": "confirm", "arrow": "dotted"},
    {"type": "section_divider", "kind": "else", "label": "sold out"},
    {"type": "message", "from": "S", "to": "U", "text": "sorry", "arrow": "dotted"},
    {"type": "section_end", "kind": "alt"},
    {"type": "activate_end", "actor": "S"},
    {"type": "note", "actors": ["U"], "placement": "left_of", "text": "waits"}
  ]
}`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"dot", false},
		{"overview", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"simple", false},
		{"handdrawn", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidStyle) {
			t.Errorf("ValidateStyle(%q) code = %s", tt.style, errors.GetCode(err))
		}
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()

	if opts.Config != config.Default() {
		t.Errorf("Config should default to config.Default(), got %+v", opts.Config)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}

	custom := config.Default()
	custom.ActorMargin = 80
	opts = Options{Config: custom}
	opts.SetLayoutDefaults()
	if opts.Config.ActorMargin != 80 {
		t.Errorf("explicit config overwritten: ActorMargin = %v", opts.Config.ActorMargin)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Style != DefaultStyle {
		t.Errorf("Style should be %s, got %s", DefaultStyle, opts.Style)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Formats: []string{FormatJSON}}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	original := opts.Config
	originalStyle := opts.Style

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Config != original {
		t.Error("Config changed on second call")
	}
	if opts.Style != originalStyle {
		t.Error("Style changed on second call")
	}
}

func TestOptionsValidateForLayout(t *testing.T) {
	bad := config.Default()
	bad.FontSize = -1
	opts := Options{Config: bad}
	if err := opts.ValidateForLayout(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("ValidateForLayout() = %v, want INVALID_CONFIG", err)
	}
}

func TestOptionsNeedsDiagram(t *testing.T) {
	tests := []struct {
		formats []string
		want    bool
	}{
		{[]string{FormatSVG}, false},
		{[]string{FormatSVG, FormatJSON}, false},
		{[]string{FormatDOT}, true},
		{[]string{FormatSVG, FormatOverview}, true},
	}
	for _, tt := range tests {
		opts := Options{Formats: tt.formats}
		if got := opts.NeedsDiagram(); got != tt.want {
			t.Errorf("NeedsDiagram(%v) = %v, want %v", tt.formats, got, tt.want)
		}
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Style: StyleSimple, SequenceNumbers: true}
	svg := opts.ArtifactKeyOpts(FormatSVG)
	if svg.Style != StyleSimple || !svg.SequenceNumbers {
		t.Errorf("svg key opts = %+v", svg)
	}

	plain := opts.ArtifactKeyOpts(FormatDOT)
	opts.Detailed = true
	detailed := opts.ArtifactKeyOpts(FormatDOT)
	if plain == detailed {
		t.Error("detailed overview should not share a cache key with the plain one")
	}
}

func TestLayoutKeyOptsTracksConfig(t *testing.T) {
	a := Options{Config: config.Default()}
	b := Options{Config: config.Default()}
	b.Config.NoteMargin = 20

	ka, err := a.LayoutKeyOpts()
	if err != nil {
		t.Fatal(err)
	}
	kb, err := b.LayoutKeyOpts()
	if err != nil {
		t.Fatal(err)
	}
	if ka.ConfigHash == kb.ConfigHash {
		t.Error("different configs produced the same hash")
	}
}

func TestDocumentHashIgnoresFormatting(t *testing.T) {
	compact := `{"events":[{"type":"add_actor","id":"A"},{"type":"message","from":"A","to":"A","text":"x"}]}`
	spaced := `{
		"events": [
			{"type": "add_actor",  "id": "A"},
			{"text": "x", "type": "message", "to": "A", "from": "A"}
		]
	}`
	d1, err := ParseDocument([]byte(compact))
	if err != nil {
		t.Fatal(err)
	}
	d2, err := ParseDocument([]byte(spaced))
	if err != nil {
		t.Fatal(err)
	}
	h1, _ := DocumentHash(d1)
	h2, _ := DocumentHash(d2)
	if h1 != h2 {
		t.Errorf("hash differs for equivalent documents: %s vs %s", h1, h2)
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(cache.NewMemoryCache(), nil, nil)
	defer r.Close()

	opts := Options{Formats: []string{FormatSVG, FormatJSON}}
	res, err := r.Execute(ctx, "checkout.json", []byte(checkout), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.ActorCount != 2 || res.Stats.EventCount != 12 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", res.CacheInfo)
	}
	if res.DocumentHash == "" {
		t.Error("DocumentHash not set")
	}
	if res.Layout.Extent.Title != "Checkout" {
		t.Errorf("Title = %q", res.Layout.Extent.Title)
	}
	if !bytes.HasPrefix(res.Artifacts[FormatSVG], []byte("<svg")) {
		t.Errorf("svg artifact = %.40q", res.Artifacts[FormatSVG])
	}
	if !json.Valid(res.Artifacts[FormatJSON]) {
		t.Error("json artifact is not valid JSON")
	}

	again, err := r.Execute(ctx, "checkout.json", []byte(checkout), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", again.CacheInfo)
	}
	if again.Layout.Extent != res.Layout.Extent {
		t.Errorf("cached Extent = %+v, want %+v", again.Layout.Extent, res.Layout.Extent)
	}
	if !bytes.Equal(again.Artifacts[FormatSVG], res.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from the rendered one")
	}
}

func TestRunnerExecuteRefresh(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(cache.NewMemoryCache(), nil, nil)

	if _, err := r.Execute(ctx, "a", []byte(checkout), Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, "a", []byte(checkout), Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass the cache: %+v", res.CacheInfo)
	}
}

func TestRunnerExecuteConfigChangeMissesCache(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(cache.NewMemoryCache(), nil, nil)

	if _, err := r.Execute(ctx, "a", []byte(checkout), Options{}); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.ActorMargin = 100
	res, err := r.Execute(ctx, "a", []byte(checkout), Options{Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("a different config must not reuse the cached layout")
	}
}

func TestRunnerExecuteErrors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		opts      Options
		code      errors.Code
		wantIndex int // -1 when no event index is expected
	}{
		{
			name:      "invalid json",
			doc:       `{"events": [`,
			code:      errors.ErrCodeInvalidFormat,
			wantIndex: -1,
		},
		{
			name: "unknown actor",
			doc: `{"events": [
				{"type": "add_actor", "id": "A"},
				{"type": "message", "from": "A", "to": "Z", "text": "?"}
			]}`,
			code:      errors.ErrCodeUnknownActor,
			wantIndex: 1,
		},
		{
			name: "end without start",
			doc: `{"events": [
				{"type": "add_actor", "id": "A"},
				{"type": "message", "from": "A", "to": "A", "text": "x"},
				{"type": "section_end", "kind": "loop"}
			]}`,
			code:      errors.ErrCodeMalformedSequence,
			wantIndex: 2,
		},
		{
			name: "unclosed section",
			doc: `{"events": [
				{"type": "add_actor", "id": "A"},
				{"type": "section_start", "kind": "opt", "label": "maybe"},
				{"type": "message", "from": "A", "to": "A", "text": "x"}
			]}`,
			code:      errors.ErrCodeMalformedSequence,
			wantIndex: 1,
		},
		{
			name:      "bad format option",
			doc:       checkout,
			opts:      Options{Formats: []string{"gif"}},
			code:      errors.ErrCodeInvalidFormat,
			wantIndex: -1,
		},
	}

	r := NewRunner(nil, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), tt.name, []byte(tt.doc), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want code %s", err, tt.code)
			}
			idx, ok := errors.EventIndex(err)
			if tt.wantIndex < 0 {
				if ok {
					t.Errorf("unexpected event index %d", idx)
				}
				return
			}
			if !ok || idx != tt.wantIndex {
				t.Errorf("EventIndex = %d, %v; want %d", idx, ok, tt.wantIndex)
			}
		})
	}
}

func TestRenderOverviewFormats(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(ctx, "a", []byte(checkout), Options{
		Formats:  []string{FormatDOT, FormatOverview},
		Detailed: true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	dot := res.Artifacts[FormatDOT]
	if !bytes.HasPrefix(dot, []byte("digraph")) {
		t.Errorf("dot artifact = %.40q", dot)
	}
	if !bytes.Contains(dot, []byte("confirm")) {
		t.Error("detailed overview should list message texts")
	}
	if !bytes.Contains(res.Artifacts[FormatOverview], []byte("<svg")) {
		t.Error("overview artifact is not SVG")
	}
}

func TestRenderFromLayoutWithoutDiagram(t *testing.T) {
	ctx := context.Background()
	d, err := ParseDocument([]byte(checkout))
	if err != nil {
		t.Fatal(err)
	}
	l, err := GenerateLayout(d, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := RenderFromLayout(ctx, l, nil, Options{Formats: []string{FormatDOT}}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("dot without diagram: err = %v, want UNSUPPORTED", err)
	}
	out, err := RenderFromLayout(ctx, l, nil, Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatalf("svg from stored layout: %v", err)
	}
	if len(out[FormatSVG]) == 0 {
		t.Error("empty svg")
	}
}

func TestGenerateLayoutTrace(t *testing.T) {
	d, err := ParseDocument([]byte(checkout))
	if err != nil {
		t.Fatal(err)
	}
	plain, err := GenerateLayout(d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(plain.Trace) != 0 {
		t.Errorf("trace recorded without Trace option: %d steps", len(plain.Trace))
	}
	traced, err := GenerateLayout(d, Options{Trace: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(traced.Trace) != len(d.Events) {
		t.Errorf("Trace has %d steps, want %d", len(traced.Trace), len(d.Events))
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, s)
}

func (h *recordingHooks) OnParseStart(context.Context, string) { h.record("parse") }
func (h *recordingHooks) OnLayoutComplete(_ context.Context, _ time.Duration, err error) {
	if err == nil {
		h.record("layout")
	}
}
func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.record("render")
}

func TestRunnerHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := NewRunner(cache.NewMemoryCache(), nil, nil)
	ctx := context.Background()
	for range 2 {
		if _, err := r.Execute(ctx, "a", []byte(checkout), Options{}); err != nil {
			t.Fatal(err)
		}
	}

	// The second run is served from cache, so only parse fires again.
	want := []string{"parse", "layout", "render", "parse"}
	if len(hooks.events) != len(want) {
		t.Fatalf("hook events = %v, want %v", hooks.events, want)
	}
	for i := range want {
		if hooks.events[i] != want[i] {
			t.Errorf("hook events = %v, want %v", hooks.events, want)
			break
		}
	}
}

package meta

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/fwmeta/pkg/archive"
	"github.com/matzehuels/fwmeta/pkg/cache"
	"github.com/matzehuels/fwmeta/pkg/errors"
	"github.com/matzehuels/fwmeta/pkg/observability"
	"github.com/matzehuels/fwmeta/pkg/software"
)

var created = time.Date(2018, 7, 1, 10, 0, 0, 0, time.UTC)

// mockProviders implements every capability and records the order of calls.
type mockProviders struct {
	detect func([]byte) (*software.Software, error)

	product *software.Product // derived from the package name
	camera  *software.Camera  // derived from the package name

	fail    string // provider that returns an error
	nothing string // provider that returns nil, nil

	calls []string
	names []string // package names passed to product/camera
}

func newMock(detect func([]byte) (*software.Software, error)) *mockProviders {
	return &mockProviders{
		detect:  detect,
		product: &software.Product{Name: "CHDK", Version: "1.4.1", Language: "en"},
		camera:  &software.Camera{Platform: "a720", Revision: "100c"},
	}
}

func (m *mockProviders) providers() software.Providers {
	return software.Providers{
		Detector: m, Product: m, Camera: m, Category: m, Source: m,
		Build: m, Compiler: m, Encoding: m, Boot: m,
	}
}

func (m *mockProviders) call(name string) error {
	m.calls = append(m.calls, name)
	if m.fail == name {
		return fmt.Errorf("%s exploded", name)
	}
	return nil
}

func ret[T any](m *mockProviders, name string, v *T) (*T, error) {
	if err := m.call(name); err != nil {
		return nil, err
	}
	if m.nothing == name {
		return nil, nil
	}
	return v, nil
}

func (m *mockProviders) Detect(_ context.Context, data []byte) (*software.Software, error) {
	m.calls = append(m.calls, "detect")
	return m.detect(data)
}

func (m *mockProviders) Product(_ context.Context, name string, c time.Time) (*software.Product, error) {
	m.names = append(m.names, name)
	p := *m.product
	p.Created = c
	return ret(m, "product", &p)
}

func (m *mockProviders) Camera(_ context.Context, name string) (*software.Camera, error) {
	m.names = append(m.names, name)
	c := *m.camera
	return ret(m, "camera", &c)
}

func (m *mockProviders) Category(context.Context, *software.Software) (*software.Category, error) {
	return ret(m, "category", &software.Category{Name: "PS"})
}

func (m *mockProviders) Source(_ context.Context, sw *software.Software) (*software.Source, error) {
	if sw.Product == nil {
		return nil, fmt.Errorf("source needs a product")
	}
	return ret(m, "source", &software.Source{Name: sw.Product.Name, Channel: "release"})
}

func (m *mockProviders) Build(context.Context, *software.Software) (*software.Build, error) {
	return ret(m, "build", &software.Build{Status: "stable"})
}

func (m *mockProviders) Compiler(context.Context, *software.Software) (*software.Compiler, error) {
	return ret(m, "compiler", &software.Compiler{Name: "gcc", Platform: "arm-none-eabi"})
}

func (m *mockProviders) Encoding(_ context.Context, hint *software.Encoding) (*software.Encoding, error) {
	if hint == nil {
		return ret(m, "encoding", &software.Encoding{Name: "plain"})
	}
	e := *hint
	return ret(m, "encoding", &e)
}

func (m *mockProviders) BootFileName(string) (string, error) {
	return "DISKBOOT.BIN", nil
}

// detected returns a detector that recognizes the camera.
func detected(platform, revision, version string) func([]byte) (*software.Software, error) {
	return func([]byte) (*software.Software, error) {
		var data uint32 = 3
		return &software.Software{
			Product:  &software.Product{Name: "CHDK", Version: version, Language: "en"},
			Camera:   &software.Camera{Platform: platform, Revision: revision},
			Encoding: &software.Encoding{Name: "dancingbits", Data: &data},
		}, nil
	}
}

// generic returns a detector that recognizes nothing but the category.
func generic([]byte) (*software.Software, error) {
	return &software.Software{Category: &software.Category{Name: "PS"}}, nil
}

func extraction() archive.Extraction {
	return archive.Extraction{
		Data:     []byte("boot bytes"),
		Entry:    "DISKBOOT.BIN",
		Archive:  "a720-100c-1.4.1.zip",
		Modified: created,
	}
}

func TestProcessDetectedBranch(t *testing.T) {
	m := newMock(detected("a720", "100c", "1.4.1"))
	p := &Pipeline{Providers: m.providers(), Category: "PS"}

	sw, err := p.Process(context.Background(), extraction())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !sw.Complete() {
		t.Errorf("record incomplete: missing %v", sw.Missing())
	}

	want := []string{"detect", "product", "camera", "category", "source", "build", "compiler", "encoding"}
	if !slices.Equal(m.calls, want) {
		t.Errorf("calls = %v, want %v", m.calls, want)
	}
	if sw.Encoding.Name != "dancingbits" || *sw.Encoding.Data != 3 {
		t.Errorf("encoding hint not forwarded: %+v", sw.Encoding)
	}
	if sw.Version != software.SchemaVersion {
		t.Errorf("Version = %q", sw.Version)
	}
	if sw.Hash == nil || sw.Hash.Name != HashName || sw.Hash.Value != cache.Hash([]byte("boot bytes")) {
		t.Errorf("Hash = %+v", sw.Hash)
	}
}

func TestProcessDerivedBranch(t *testing.T) {
	m := newMock(generic)
	p := &Pipeline{Providers: m.providers()}

	x := extraction()
	sw, err := p.Process(context.Background(), x)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !sw.Complete() {
		t.Errorf("record incomplete: missing %v", sw.Missing())
	}

	want := []string{"detect", "product", "category", "source", "build", "compiler", "encoding", "camera"}
	if !slices.Equal(m.calls, want) {
		t.Errorf("calls = %v, want %v", m.calls, want)
	}
	if !slices.Equal(m.names, []string{x.Archive, x.Archive}) {
		t.Errorf("providers received names %v, want the package name", m.names)
	}
	if !sw.Product.Created.Equal(created) {
		t.Errorf("Created = %v, want %v", sw.Product.Created, created)
	}
	if sw.Camera.Platform != "a720" || sw.Encoding.Name != "plain" {
		t.Errorf("unexpected record: camera %+v, encoding %+v", sw.Camera, sw.Encoding)
	}
}

func TestValidationKeepsBinaryValues(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	hooks := &mismatchHooks{}
	observability.SetScanHooks(hooks)

	m := newMock(detected("a710", "100b", "1.5.0"))
	p := &Pipeline{Providers: m.providers(), Category: "EOS"}

	sw, err := p.Process(context.Background(), extraction())
	if err != nil {
		t.Fatalf("mismatches must not fail processing: %v", err)
	}
	if sw.Camera.Platform != "a710" || sw.Camera.Revision != "100b" || sw.Product.Version != "1.5.0" {
		t.Errorf("binary values overwritten: camera %+v, product %+v", sw.Camera, sw.Product)
	}

	want := []string{"product.version", "camera.platform", "camera.revision"}
	if !slices.Equal(hooks.fields, want) {
		t.Errorf("mismatches = %v, want %v", hooks.fields, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		category string
		sw       *software.Software
		want     []string
	}{
		{
			name:     "all match",
			category: "PS",
			sw: &software.Software{
				Category: &software.Category{Name: "PS"},
				Product:  &software.Product{Name: "CHDK", Version: "1.4.1", Language: "en"},
				Camera:   &software.Camera{Platform: "a720", Revision: "100c"},
			},
		},
		{
			name:     "category mismatch",
			category: "PS",
			sw: &software.Software{
				Category: &software.Category{Name: "EOS"},
				Product:  &software.Product{Name: "CHDK", Version: "1.4.1", Language: "en"},
				Camera:   &software.Camera{Platform: "a720", Revision: "100c"},
			},
			want: []string{"category.name"},
		},
		{
			name: "language and revision",
			sw: &software.Software{
				Product: &software.Product{Name: "CHDK", Version: "1.4.1", Language: "de"},
				Camera:  &software.Camera{Platform: "a720", Revision: "100b"},
			},
			want: []string{"product.language", "camera.revision"},
		},
		{
			name: "no binary product",
			sw:   &software.Software{Camera: &software.Camera{Platform: "a720", Revision: "100c"}},
			want: []string{"product.name", "product.version", "product.language"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMock(nil)
			p := &Pipeline{Providers: m.providers(), Category: tt.category}
			before := *tt.sw

			var got []string
			for _, mm := range p.Validate(context.Background(), tt.sw, extraction()) {
				got = append(got, mm.Field)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("mismatches = %v, want %v", got, tt.want)
			}
			if !reflect.DeepEqual(before, *tt.sw) {
				t.Error("Validate modified the record")
			}
		})
	}
}

func TestValidateProviderErrorIsWarning(t *testing.T) {
	m := newMock(detected("a720", "100c", "1.4.1"))
	m.fail = "camera"
	p := &Pipeline{Providers: m.providers()}

	sw, err := p.Process(context.Background(), extraction())
	if err != nil {
		t.Fatalf("validation provider error must not fail: %v", err)
	}
	if sw.Camera.Platform != "a720" {
		t.Errorf("camera = %+v", sw.Camera)
	}
}

func TestProcessDetectionFailure(t *testing.T) {
	tests := []struct {
		name   string
		detect func([]byte) (*software.Software, error)
	}{
		{"nil record", func([]byte) (*software.Software, error) { return nil, nil }},
		{"nil record with error", func([]byte) (*software.Software, error) {
			return nil, fmt.Errorf("unknown signature")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMock(tt.detect)
			p := &Pipeline{Providers: m.providers()}
			sw, err := p.Process(context.Background(), extraction())
			if sw != nil || !errors.Is(err, errors.ErrCodeDetection) {
				t.Errorf("got %v, %v; want DETECTION_FAILED", sw, err)
			}
			if len(m.calls) != 1 {
				t.Errorf("no provider should run after failed detection: %v", m.calls)
			}
		})
	}
}

func TestProcessPartialDetectionContinues(t *testing.T) {
	m := newMock(func(b []byte) (*software.Software, error) {
		sw, _ := generic(b)
		return sw, errors.New(errors.ErrCodeDetection, "no version marker")
	})
	p := &Pipeline{Providers: m.providers()}

	sw, err := p.Process(context.Background(), extraction())
	if err != nil {
		t.Fatalf("partial detection should continue: %v", err)
	}
	if !sw.Complete() {
		t.Errorf("missing %v", sw.Missing())
	}
}

func TestProcessProviderFailure(t *testing.T) {
	for _, name := range []string{"category", "source", "build", "compiler", "encoding", "product", "camera"} {
		t.Run("error/"+name, func(t *testing.T) {
			m := newMock(generic)
			m.fail = name
			p := &Pipeline{Providers: m.providers()}
			sw, err := p.Process(context.Background(), extraction())
			if sw != nil || !errors.Is(err, errors.ErrCodeProviderFailure) {
				t.Errorf("got %v, %v; want PROVIDER_FAILURE", sw, err)
			}
		})
		t.Run("nil/"+name, func(t *testing.T) {
			m := newMock(generic)
			m.nothing = name
			p := &Pipeline{Providers: m.providers()}
			sw, err := p.Process(context.Background(), extraction())
			if sw != nil || !errors.Is(err, errors.ErrCodeProviderFailure) {
				t.Errorf("got %v, %v; want PROVIDER_FAILURE", sw, err)
			}
		})
	}
}

func TestProcessIdempotent(t *testing.T) {
	for name, detect := range map[string]func([]byte) (*software.Software, error){
		"detected": detected("a720", "100c", "1.4.1"),
		"derived":  generic,
	} {
		t.Run(name, func(t *testing.T) {
			p := &Pipeline{Providers: newMock(detect).providers()}
			a, err := p.Process(context.Background(), extraction())
			if err != nil {
				t.Fatal(err)
			}
			b, err := p.Process(context.Background(), extraction())
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(a, b) {
				t.Errorf("records differ:\n%+v\n%+v", a, b)
			}
		})
	}
}

func TestProcessContextErrorPassesThrough(t *testing.T) {
	m := newMock(func([]byte) (*software.Software, error) { return nil, context.Canceled })
	p := &Pipeline{Providers: m.providers()}
	if _, err := p.Process(context.Background(), extraction()); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type mismatchHooks struct {
	observability.NoopScanHooks
	fields []string
}

func (h *mismatchHooks) OnMismatch(_ context.Context, _, field, _, _ string) {
	h.fields = append(h.fields, field)
}

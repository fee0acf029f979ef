package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopScanHooks{}
	s.OnArchiveEnter(ctx, "a720-100c.zip", 0)
	s.OnExtraction(ctx, "a720-100c.zip", "DISKBOOT.BIN", 4096, 0)
	s.OnMismatch(ctx, "a720-100c.zip", "camera.revision", "100c", "100b")
	s.OnRecordComplete(ctx, "a720-100c.zip", BranchDetected, time.Millisecond, nil)
	s.OnArchiveExit(ctx, "a720-100c.zip", 0, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "detect")
	c.OnCacheMiss(ctx, "detect")
	c.OnCacheSet(ctx, "detect", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/records")
	h.OnResponse(ctx, "GET", "/records", 200, time.Second)
	h.OnError(ctx, "GET", "/records", errors.New("boom"))
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Scan().(NoopScanHooks); !ok {
		t.Error("Scan() should return NoopScanHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customScan := &testScanHooks{}
	SetScanHooks(customScan)
	if Scan() != customScan {
		t.Error("SetScanHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Scan().(NoopScanHooks); !ok {
		t.Error("Reset() should restore NoopScanHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testScanHooks{}
	SetScanHooks(custom)
	SetScanHooks(nil)
	if Scan() != custom {
		t.Error("SetScanHooks(nil) should not replace existing hooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testScanHooks{}
	SetScanHooks(h)

	ctx := context.Background()
	Scan().OnArchiveEnter(ctx, "pkg.zip", 0)
	Scan().OnMismatch(ctx, "pkg.zip", "product.version", "1.4.0", "1.5.0")

	if h.entered != 1 {
		t.Errorf("entered = %d, want 1", h.entered)
	}
	if h.mismatches != 1 {
		t.Errorf("mismatches = %d, want 1", h.mismatches)
	}
}

type testScanHooks struct {
	NoopScanHooks
	entered    int
	mismatches int
}

func (h *testScanHooks) OnArchiveEnter(context.Context, string, int) { h.entered++ }
func (h *testScanHooks) OnMismatch(context.Context, string, string, string, string) {
	h.mismatches++
}

type testCacheHooks struct{ NoopCacheHooks }

type testHTTPHooks struct{ NoopHTTPHooks }

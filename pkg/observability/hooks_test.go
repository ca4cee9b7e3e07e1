package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnParseStart(ctx, "gexf", "network.gexf")
	p.OnParseComplete(ctx, "gexf", "network.gexf", 100, 240, time.Second, nil)
	p.OnRenderStart(ctx, "svg", 100)
	p.OnRenderComplete(ctx, "svg", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "graph")
	c.OnCacheMiss(ctx, "snapshot")
	c.OnCacheSet(ctx, "graph", 1024)

	s := NoopSessionHooks{}
	s.OnEvent(ctx, "sess", "click", "selected", time.Millisecond)
	s.OnStaleEvent(ctx, "sess", 1, 2)
	s.OnUploadRejected(ctx, "sess")

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/api/upload")
	h.OnResponse(ctx, "POST", "/api/upload", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Session().(NoopSessionHooks); !ok {
		t.Error("Session() should return NoopSessionHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customSession := &testSessionHooks{}
	SetSessionHooks(customSession)
	if Session() != customSession {
		t.Error("SetSessionHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Session().(NoopSessionHooks); !ok {
		t.Error("Reset() should restore NoopSessionHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testSessionHooks{}
	SetSessionHooks(custom)
	SetSessionHooks(nil)

	if Session() != custom {
		t.Error("SetSessionHooks(nil) should be ignored")
	}
}

func TestHooksConcurrentAccess(t *testing.T) {
	Reset()
	defer Reset()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetSessionHooks(&testSessionHooks{})
		}()
		go func() {
			defer wg.Done()
			Session().OnEvent(context.Background(), "sess", "hover", "hovering", time.Microsecond)
		}()
	}
	wg.Wait()

	if _, ok := Session().(*testSessionHooks); !ok {
		t.Errorf("Session() = %T after concurrent registration", Session())
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testSessionHooks struct{ NoopSessionHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

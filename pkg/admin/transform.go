package admin

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Keys that let an imposter run caller-supplied code.
var injectionPaths = []jp.Expr{
	jp.MustParseString("$..inject"),
	jp.MustParseString("$..decorate"),
	jp.MustParseString("$..shellTransform"),
}

var (
	stubsPath = jp.MustParseString("$.stubs")
	proxyPath = jp.MustParseString("$.proxy")
)

// Runtime fields that are not part of a replayable definition.
var (
	runtimeImposterFields = []string{"requests", "numberOfRequests", "_links"}
	runtimeStubFields     = []string{"matches", "_links"}
)

// usesInjection reports whether imp contains any code injection key.
func usesInjection(imp Imposter) bool {
	for _, x := range injectionPaths {
		if len(x.Get(imp)) > 0 {
			return true
		}
	}
	return false
}

// stubsOf returns the stub list of imp, or nil.
func stubsOf(imp Imposter) []any {
	found := stubsPath.Get(imp)
	if len(found) == 0 {
		return nil
	}
	stubs, _ := found[0].([]any)
	return stubs
}

// makeReplayable strips runtime fields from imp in place.
func makeReplayable(imp Imposter) {
	for _, k := range runtimeImposterFields {
		delete(imp, k)
	}
	for _, s := range stubsOf(imp) {
		if stub, ok := s.(map[string]any); ok {
			for _, k := range runtimeStubFields {
				delete(stub, k)
			}
		}
	}
}

// removeProxies deletes proxy responses from imp in place. Stubs left with
// no responses are dropped.
func removeProxies(imp Imposter) {
	stubs := stubsOf(imp)
	if stubs == nil {
		return
	}

	kept := make([]any, 0, len(stubs))
	for _, s := range stubs {
		stub, ok := s.(map[string]any)
		if !ok {
			kept = append(kept, s)
			continue
		}
		responses, _ := stub["responses"].([]any)
		if responses == nil {
			kept = append(kept, s)
			continue
		}

		var remaining []any
		for _, r := range responses {
			if len(proxyPath.Get(r)) == 0 {
				remaining = append(remaining, r)
			}
		}
		if len(remaining) == 0 {
			continue
		}
		stub["responses"] = remaining
		kept = append(kept, stub)
	}
	imp["stubs"] = kept
}

// addLinks decorates imp with request counts and hypermedia links.
func addLinks(imp Imposter, baseURL string) {
	if _, ok := imp["numberOfRequests"]; !ok {
		imp["numberOfRequests"] = 0
	}
	if port, ok := portOf(imp); ok {
		href := fmt.Sprintf("%s/imposters/%s", baseURL, port)
		imp["_links"] = map[string]any{
			"self":  map[string]any{"href": href},
			"stubs": map[string]any{"href": href + "/stubs"},
		}
	}
}

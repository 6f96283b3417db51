// Package mirror selects the fastest reachable PyPI index.
//
// Users behind the Great Firewall see order-of-magnitude differences
// between the official index and the domestic mirrors, so the install
// flow races them and configures pip with the winner.
package mirror

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/videolingo/vlsetup/internal/core/pip"
)

// Mirror is one PyPI index candidate
type Mirror struct {
	Name string
	URL  string
}

// Candidates are raced in order of appearance; the official index is
// always included so a fast overseas connection keeps the default.
var Candidates = []Mirror{
	{Name: "PyPI", URL: "https://pypi.org/simple"},
	{Name: "Tsinghua", URL: "https://pypi.tuna.tsinghua.edu.cn/simple"},
	{Name: "Aliyun", URL: "https://mirrors.aliyun.com/pypi/simple"},
	{Name: "Tencent", URL: "https://mirrors.cloud.tencent.com/pypi/simple"},
	{Name: "USTC", URL: "https://mirrors.ustc.edu.cn/pypi/simple"},
	{Name: "Douban", URL: "https://pypi.doubanio.com/simple"},
}

// Result is the measured latency of one mirror
type Result struct {
	Mirror  Mirror
	Latency time.Duration
	Err     error
}

// probeTimeout bounds each latency measurement; a mirror that cannot
// answer within it is effectively unusable for package downloads
const probeTimeout = 3500 * time.Millisecond

// probe measures one mirror. Overridable for tests.
var probe = func(ctx context.Context, m Mirror) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.URL+"/", nil)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// A tiny read is enough to prove the index answers; the full
	// project listing can run to megabytes.
	io.CopyN(io.Discard, resp.Body, 1024)

	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return time.Since(start), nil
}

// Measure probes all candidates concurrently and returns one result
// per candidate, in candidate order.
func Measure(ctx context.Context, candidates []Mirror) []Result {
	results := make([]Result, len(candidates))

	var wg sync.WaitGroup
	for i, m := range candidates {
		wg.Add(1)
		go func(i int, m Mirror) {
			defer wg.Done()
			latency, err := probe(ctx, m)
			results[i] = Result{Mirror: m, Latency: latency, Err: err}
		}(i, m)
	}
	wg.Wait()

	return results
}

// Fastest returns the reachable mirror with the lowest latency
func Fastest(results []Result) (Result, bool) {
	var best Result
	found := false
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if !found || r.Latency < best.Latency {
			best = r
			found = true
		}
	}
	return best, found
}

// Choose races the default candidates and returns the fastest one
func Choose(ctx context.Context) (Result, error) {
	results := Measure(ctx, Candidates)
	best, ok := Fastest(results)
	if !ok {
		return Result{}, fmt.Errorf("no PyPI mirror reachable")
	}
	return best, nil
}

// Apply points pip's global index at the given mirror
func Apply(ctx context.Context, p *pip.Pip, m Mirror) error {
	return p.ConfigSet(ctx, "global.index-url", m.URL)
}

// ByName finds a candidate mirror by name, ignoring case
func ByName(name string) (Mirror, bool) {
	for _, m := range Candidates {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return Mirror{}, false
}

// Sorted returns the results ordered fastest first, with unreachable
// mirrors at the end in candidate order.
func Sorted(results []Result) []Result {
	out := make([]Result, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		if (out[i].Err == nil) != (out[j].Err == nil) {
			return out[i].Err == nil
		}
		if out[i].Err != nil {
			return false
		}
		return out[i].Latency < out[j].Latency
	})
	return out
}

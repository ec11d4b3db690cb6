package docsite

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/addonkit/addonkit/site"
)

// Link is a reference extracted from a rendered page.
type Link struct {
	URL      string
	Page     string // page the link appears on, relative to the output root
	External bool
}

// BrokenLink describes a link that failed verification.
type BrokenLink struct {
	Link   Link
	Reason string
}

// ExtractLinks parses the rendered HTML of a page and returns its links.
// Fragment-only and mailto references are skipped.
func ExtractLinks(r io.Reader, page string) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", page, err)
	}
	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if ref, ok := linkAttr(n); ok {
				if l, ok := classify(ref, page); ok {
					links = append(links, l)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func linkAttr(n *html.Node) (string, bool) {
	var attr string
	switch n.Data {
	case "a", "link":
		attr = "href"
	case "img", "script":
		attr = "src"
	default:
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == attr && a.Val != "" {
			return a.Val, true
		}
	}
	return "", false
}

func classify(ref, page string) (Link, bool) {
	if strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "mailto:") || strings.HasPrefix(ref, "data:") {
		return Link{}, false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return Link{URL: ref, Page: page}, true
	}
	return Link{URL: ref, Page: page, External: u.IsAbs()}, true
}

// VerifyLinks checks every link in a build. Internal links must resolve to a
// file in the output directory; external links must answer a HEAD request
// with a non-error status. External checks run through a bounded Site pool.
func VerifyLinks(ctx context.Context, cfg *Config, build *Build) ([]BrokenLink, error) {
	var all []Link
	for _, page := range build.Pages {
		rel := page.OutputRel()
		f, err := os.Open(filepath.Join(build.Output, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("open rendered page: %w", err)
		}
		links, err := ExtractLinks(f, rel)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		all = append(all, links...)
	}

	var broken []BrokenLink
	var external []Link
	for _, l := range all {
		if l.External {
			external = append(external, l)
			continue
		}
		if reason, ok := checkInternal(build.Output, l); !ok {
			broken = append(broken, BrokenLink{Link: l, Reason: reason})
		}
	}
	if len(external) > 0 && cfg.Verify.Enabled {
		extBroken, err := checkExternal(ctx, cfg, external)
		if err != nil {
			return nil, err
		}
		broken = append(broken, extBroken...)
	}
	sort.Slice(broken, func(i, j int) bool {
		if broken[i].Link.Page != broken[j].Link.Page {
			return broken[i].Link.Page < broken[j].Link.Page
		}
		return broken[i].Link.URL < broken[j].Link.URL
	})
	return broken, nil
}

func checkInternal(outputDir string, l Link) (string, bool) {
	u, err := url.Parse(l.URL)
	if err != nil {
		return "unparseable reference", false
	}
	target := u.Path
	if target == "" {
		return "", true
	}
	if !strings.HasPrefix(target, "/") {
		target = path.Join(path.Dir(l.Page), target)
	}
	target = strings.TrimPrefix(target, "/")
	if target == "" || strings.HasSuffix(target, "/") {
		target = path.Join(target, "index.html")
	}
	if _, err := os.Stat(filepath.Join(outputDir, filepath.FromSlash(target))); err != nil {
		return "target file not found", false
	}
	return "", true
}

func checkExternal(ctx context.Context, cfg *Config, links []Link) ([]BrokenLink, error) {
	timeout := time.Duration(cfg.Verify.TimeoutSeconds) * time.Second
	checker, err := site.New(site.WithTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("create link checker: %w", err)
	}

	reqs := make([]site.Request, len(links))
	for i, l := range links {
		reqs[i] = site.Request{Method: "HEAD", Target: l.URL}
	}
	results, _ := checker.Concurrent(ctx, reqs, site.MaxWorkers(cfg.Verify.MaxConcurrent))

	var broken []BrokenLink
	for i, res := range results {
		switch {
		case res.Err != nil:
			broken = append(broken, BrokenLink{Link: links[i], Reason: res.Err.Error()})
		case !res.Response.OK():
			broken = append(broken, BrokenLink{Link: links[i], Reason: res.Response.Status})
		}
	}
	return broken, nil
}

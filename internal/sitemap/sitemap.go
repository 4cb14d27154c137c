// Package sitemap lists the storefront's public URLs in sitemaps.org format.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type URL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Build lists the home page, one page per locale and every product order
// page, both unprefixed and per locale.
func Build(baseURL string, locales []string, productIDs []int, now time.Time) URLSet {
	base := strings.TrimRight(baseURL, "/")
	mod := now.UTC().Format(time.RFC3339)
	set := URLSet{Xmlns: xmlns}
	add := func(loc, freq string, prio float64) {
		set.URLs = append(set.URLs, URL{Loc: loc, LastMod: mod, ChangeFreq: freq, Priority: prio})
	}

	add(base, "weekly", 1.0)
	for _, l := range locales {
		add(base+"/"+l, "weekly", 0.9)
	}
	for _, id := range productIDs {
		add(fmt.Sprintf("%s/buy/%d", base, id), "monthly", 0.8)
		for _, l := range locales {
			add(fmt.Sprintf("%s/%s/buy/%d", base, l, id), "monthly", 0.8)
		}
	}
	return set
}

// Write encodes the set with an XML declaration.
func (s URLSet) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.Wrap(err, "write sitemap header")
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(s); err != nil {
		return errors.Wrap(err, "encode sitemap")
	}
	return nil
}

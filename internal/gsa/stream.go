package gsa

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/htmlindex"
)

// Stats counts element lifetimes during one streaming pass.
// Live elements are matches decoded from the stream and not yet handed back
// by the pass callback.
type Stats struct {
	Decoded  int // matching elements decoded from the stream
	Released int // matches the scanner dropped after the callback returned
	Retained int // elements kept by the caller (index entries)
	PeakLive int // max matches held by the scanner at once
	Skipped  int // elements ignored because they lacked a usable link ID
}

// Live is the number of decoded matches not yet released.
func (s Stats) Live() int {
	return s.Decoded - s.Released
}

// Scan walks r as a forward-only token stream and decodes each outermost
// element whose tag is in tags into an Element. fn sees every matching element
// once, nested ones included, in the order their end tags appear: children
// before their parent. The scanner keeps no reference to a subtree after its
// outermost element has been handed to fn.
func Scan(r io.Reader, tags []string, fn func(*Element) error) (Stats, error) {
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var stats Stats
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || !want[start.Name.Local] {
			continue
		}

		el := &Element{}
		if err := dec.DecodeElement(el, &start); err != nil {
			return stats, err
		}
		matches := endOrder(el, want, nil)
		stats.Decoded += len(matches)
		if live := stats.Live(); live > stats.PeakLive {
			stats.PeakLive = live
		}

		for _, m := range matches {
			err := fn(m)
			stats.Released++
			if err != nil {
				return stats, err
			}
		}
	}

	return stats, nil
}

// endOrder appends the matching elements of el's subtree in end-tag order.
func endOrder(el *Element, want map[string]bool, out []*Element) []*Element {
	for i := range el.Children {
		out = endOrder(&el.Children[i], want, out)
	}
	if want[el.Tag()] {
		out = append(out, el)
	}
	return out
}

// charsetReader lets the decoder read GSA files saved in legacy code pages
// (the client data is usually EUC-KR or windows-949).
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("gsa: unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

package validate

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// numberRun matches a leading digit run with embedded group separators, the
// way registries print share tranches ("1'240'835", "1.655.000").
var numberRun = regexp.MustCompile(`\d[\d'.]*`)

// separatedNumber matches a complete grouped number; used by the static-HTML
// fallback so plain integers elsewhere in the page are not picked up.
var separatedNumber = regexp.MustCompile(`^\d{1,3}(?:['.]\d{3})+$`)

// ParseShareCount extracts the leading numeric run from text, strips group
// separators and parses it. ok is false when no digits are present or the
// run does not fit an int64.
func ParseShareCount(text string) (int64, bool) {
	run := numberRun.FindString(text)
	if run == "" {
		return 0, false
	}
	run = strings.Trim(run, "'.")
	run = strings.ReplaceAll(run, "'", "")
	run = strings.ReplaceAll(run, ".", "")
	n, err := strconv.ParseInt(run, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SumDenominations aggregates the share counts of all listed tranches.
// Fragments that fail to parse are skipped, not fatal; a total of zero means
// nothing usable was collected.
func SumDenominations(texts []string) int64 {
	var total int64
	for _, t := range texts {
		if n, ok := ParseShareCount(t); ok {
			total += n
		}
	}
	return total
}

// CompareShares applies the configured tolerance policy. tolerancePct <= 0
// demands exact equality; otherwise actual must fall inside the inclusive
// percent band around expected.
func CompareShares(actual, expected int64, tolerancePct float64) bool {
	if tolerancePct <= 0 {
		return actual == expected
	}
	band := float64(expected) * tolerancePct / 100
	lo := float64(expected) - band
	hi := float64(expected) + band
	a := float64(actual)
	return a >= lo && a <= hi
}

// DenominationsFromHTML is the last extraction tier: when no live selector
// matched, scan the serialized page for table cells whose text is a grouped
// number, skipping struck-through values (superseded tranches).
func DenominationsFromHTML(page string) []string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var out []string
	var walk func(n *html.Node, struck bool)
	walk = func(n *html.Node, struck bool) {
		if n.Type == html.ElementNode {
			if isStruck(n) {
				struck = true
			}
			if n.Data == "td" && !struck {
				text := strings.TrimSpace(cellText(n))
				if separatedNumber.MatchString(text) {
					out = append(out, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, struck)
		}
	}
	walk(doc, false)
	return out
}

func isStruck(n *html.Node) bool {
	if n.Data == "s" || n.Data == "strike" || n.Data == "del" {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == "class" && strings.Contains(attr.Val, "strike") {
			return true
		}
	}
	return false
}

// cellText concatenates the visible text of a cell, excluding struck-through
// descendants.
func cellText(n *html.Node) string {
	var b strings.Builder
	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			return
		}
		if c.Type == html.ElementNode && isStruck(c) {
			return
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}
	return b.String()
}

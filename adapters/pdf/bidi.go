package exportpdf

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/bidi"
)

var rtlScripts = []*unicode.RangeTable{unicode.Arabic, unicode.Hebrew, unicode.Syriac, unicode.Thaana, unicode.Nko}

func containsRTL(text string) bool {
	for _, r := range text {
		if unicode.In(r, rtlScripts...) {
			return true
		}
	}
	return false
}

// lrm is the left-to-right mark. x/text/unicode/bidi only forces a
// right-to-left paragraph level, so a leading mark pins left-to-right text.
const lrm = "\u200e"

// visualOrder converts one line from logical to visual order so a
// left-to-right canvas shows right-to-left script correctly. rtl selects the
// paragraph direction: a right-to-left line reads from the right edge, a
// left-to-right line keeps its runs in reading order and only mirrors the
// right-to-left runs inside it. Text without right-to-left characters is
// returned unchanged, as is text the bidi algorithm rejects.
func visualOrder(text string, rtl bool) string {
	if !containsRTL(text) {
		return text
	}

	source := text
	direction := bidi.RightToLeft
	if !rtl {
		source = lrm + text
		direction = bidi.LeftToRight
	}

	var paragraph bidi.Paragraph
	if _, err := paragraph.SetString(source, bidi.DefaultDirection(direction)); err != nil {
		return text
	}
	ordering, err := paragraph.Order()
	if err != nil {
		return text
	}

	if rtl {
		var b strings.Builder
		b.Grow(len(source))
		for i := ordering.NumRuns() - 1; i >= 0; i-- {
			run := ordering.Run(i)
			writeRun(&b, run.String(), run.Direction())
		}
		return b.String()
	}
	return strings.TrimPrefix(leftToRightLine(ordering), lrm)
}

func writeRun(b *strings.Builder, text string, direction bidi.Direction) {
	if direction == bidi.RightToLeft {
		b.WriteString(bidi.ReverseString(text))
		return
	}
	b.WriteString(text)
}

// leftToRightLine lays out runs of a left-to-right paragraph. Numbers that
// follow right-to-left text sit one level above it, so they are reordered
// together with the surrounding right-to-left runs while keeping their own
// digit order.
func leftToRightLine(ordering bidi.Ordering) string {
	type piece struct {
		text      string
		direction bidi.Direction
	}
	var b strings.Builder
	var group []piece
	flush := func() {
		for i := len(group) - 1; i >= 0; i-- {
			writeRun(&b, group[i].text, group[i].direction)
		}
		group = group[:0]
	}

	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		text := run.String()
		if run.Direction() == bidi.RightToLeft {
			group = append(group, piece{text: text, direction: bidi.RightToLeft})
			continue
		}
		if len(group) > 0 {
			number, rest := splitNumber(text)
			if number != "" {
				group = append(group, piece{text: number, direction: bidi.LeftToRight})
			}
			text = rest
			if text == "" {
				continue
			}
		}
		flush()
		b.WriteString(text)
	}
	flush()
	return b.String()
}

// splitNumber cuts a leading number, including separators between digits,
// off text.
func splitNumber(text string) (string, string) {
	runes := []rune(text)
	end := 0
	for i, r := range runes {
		if unicode.IsDigit(r) {
			end = i + 1
			continue
		}
		if strings.ContainsRune(".,:/-", r) && end > 0 && end == i && i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
			continue
		}
		break
	}
	return string(runes[:end]), string(runes[end:])
}

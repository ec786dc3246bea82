package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/matzehuels/barrace/pkg/render/race"
	"github.com/matzehuels/barrace/pkg/settings"
)

const (
	// insideLabelInset is the left padding of labels drawn inside a bar.
	insideLabelInset = 8
	// counterGap separates a front image from the counter text.
	counterGap = 8
	// charWidthRatio approximates the advance of one character in em.
	charWidthRatio = 0.55
	dateBoxPadX    = 10
	dateBoxPadY    = 6
	ringOpacity    = 0.9
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	images map[string]string
	locale language.Tag
	p      *message.Printer
}

// WithImages maps image references to the hrefs written into the SVG,
// typically data URIs produced by the assets package. References without an
// entry are written as-is.
func WithImages(hrefs map[string]string) SVGOption {
	return func(r *svgRenderer) { r.images = hrefs }
}

// WithLocale sets the locale used for counter digit grouping.
func WithLocale(tag language.Tag) SVGOption {
	return func(r *svgRenderer) { r.locale = tag }
}

// RenderSVG draws a frame. Every visible bar becomes one <g class="bar">
// group holding its rectangle, label, image and counter.
func RenderSVG(f *race.Frame, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		f.Width, f.Height, f.Width, f.Height)

	if f.Style.Background != "" {
		fmt.Fprintf(&buf, `  <rect class="background" x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n",
			f.Width, f.Height, escapeXML(f.Style.Background))
	}

	renderClipPaths(&buf, f)

	fmt.Fprintf(&buf, `  <g class="plot" transform="translate(%d %d)" font-family="%s">`+"\n",
		f.Plot.X, f.Plot.Y, escapeXML(f.Style.FontFamily))
	for i, b := range f.Bars {
		if b.Empty {
			continue
		}
		r.renderBar(&buf, f, i, b)
	}
	buf.WriteString("  </g>\n")

	if f.Date != nil {
		renderDate(&buf, f)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{locale: race.DefaultLocale}
	for _, opt := range opts {
		opt(&r)
	}
	r.p = race.NewPrinter(r.locale)
	return r
}

func (r *svgRenderer) href(ref string) string {
	if h, ok := r.images[ref]; ok {
		return h
	}
	return ref
}

// renderClipPaths emits the shared elliptical clip for images. It uses
// objectBoundingBox units so one path fits every image size.
func renderClipPaths(buf *bytes.Buffer, f *race.Frame) {
	if !hasImages(f) {
		return
	}
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <clipPath id="image-clip" clipPathUnits="objectBoundingBox"><ellipse cx="0.5" cy="0.5" rx="0.5" ry="0.5"/></clipPath>` + "\n")
	buf.WriteString("  </defs>\n")
}

func (r *svgRenderer) renderBar(buf *bytes.Buffer, f *race.Frame, i int, b race.Bar) {
	st := f.Style
	w := b.WidthPercent / 100 * float64(f.Plot.Width)
	h := float64(b.Height)
	cy := h / 2

	fmt.Fprintf(buf, `    <g class="bar" id="bar-%d" data-label="%s" data-rank="%d" transform="translate(0 %.2f)">`+"\n",
		i, escapeXML(b.Label), b.Rank, b.Top)

	fmt.Fprintf(buf, `      <path class="bar-rect" d="%s" fill="%s"/>`+"\n", barPath(w, h, float64(b.Radius)), escapeXML(b.Color))

	switch st.LabelPosition {
	case settings.LabelInside:
		r.renderLabel(buf, st, b, insideLabelInset, cy, "start")
	default:
		x := -float64(st.LabelSpacing)
		r.renderLabel(buf, st, b, x, cy, "end")
		if b.Image != "" && st.ImagePosition == settings.ImageBehind {
			r.renderImage(buf, b, x-textWidth(b.Label, b.FontSize)-float64(b.OuterImageWidth()), cy)
		}
	}

	x := b.AnchorPercent / 100 * float64(f.Plot.Width)
	if b.Image != "" && st.ImagePosition == settings.ImageFront {
		x += float64(st.ImageSpacing)
		r.renderImage(buf, b, x, cy)
		x += float64(b.OuterImageWidth() + counterGap)
	}
	if st.ShowValues {
		fmt.Fprintf(buf, `      <text class="counter" x="%.2f" y="%.2f" dominant-baseline="central" font-size="%d" font-weight="bold" fill="%s">%s</text>`+"\n",
			x, cy, b.FontSize, escapeXML(st.ValueColor), escapeXML(race.FormatCounter(r.p, b.Counter)))
	}

	buf.WriteString("    </g>\n")
}

func (r *svgRenderer) renderLabel(buf *bytes.Buffer, st race.Style, b race.Bar, x, cy float64, anchor string) {
	fill := fmt.Sprintf(`fill="%s"`, escapeXML(st.LabelColor))
	if st.LabelsHidden {
		fill = `fill="none"`
	}
	fmt.Fprintf(buf, `      <text class="label" x="%.2f" y="%.2f" text-anchor="%s" dominant-baseline="central" font-size="%d" %s>%s</text>`+"\n",
		x, cy, anchor, b.FontSize, fill, escapeXML(b.Label))
}

// renderImage draws the entity image, and its ring when a border is set, with
// the outer box's left edge at x, vertically centered on cy.
func (r *svgRenderer) renderImage(buf *bytes.Buffer, b race.Bar, x, cy float64) {
	ow, oh := float64(b.OuterImageWidth()), float64(b.OuterImageHeight())
	top := cy - oh/2
	if b.BorderWidth > 0 {
		bw := float64(b.BorderWidth)
		fmt.Fprintf(buf, `      <ellipse class="ring" cx="%.2f" cy="%.2f" rx="%.2f" ry="%.2f" fill="none" stroke="%s" stroke-width="%d" opacity="%.1f"/>`+"\n",
			x+ow/2, cy, (ow-bw)/2, (oh-bw)/2, escapeXML(b.Color), b.BorderWidth, ringOpacity)
	}
	inset := float64(b.BorderWidth + b.BorderSpacing)
	fmt.Fprintf(buf, `      <image class="image" href="%s" x="%.2f" y="%.2f" width="%d" height="%d" preserveAspectRatio="xMidYMid slice" clip-path="url(#image-clip)"/>`+"\n",
		escapeXML(r.href(b.Image)), x+inset, top+inset, b.ImageWidth, b.ImageHeight)
}

func renderDate(buf *bytes.Buffer, f *race.Frame) {
	d := f.Date
	w := textWidth(d.Text, d.FontSize) + 2*dateBoxPadX
	h := float64(d.FontSize) + 2*dateBoxPadY

	var x, y float64
	switch d.Position {
	case settings.TopLeft:
		x, y = float64(d.Margins.Left), float64(d.Margins.Top)
	case settings.TopRight:
		x, y = float64(f.Width-d.Margins.Right)-w, float64(d.Margins.Top)
	case settings.BottomLeft:
		x, y = float64(d.Margins.Left), float64(f.Height-d.Margins.Bottom)-h
	default:
		x, y = float64(f.Width-d.Margins.Right)-w, float64(f.Height-d.Margins.Bottom)-h
	}

	fmt.Fprintf(buf, `  <g class="date" transform="translate(%.2f %.2f)" font-family="%s">`+"\n", x, y, escapeXML(f.Style.FontFamily))
	fmt.Fprintf(buf, `    <rect width="%.2f" height="%.2f" rx="4" fill="%s"/>`+"\n", w, h, escapeXML(d.BackgroundColor))
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" font-size="%d" fill="%s">%s</text>`+"\n",
		w/2, h/2, d.FontSize, escapeXML(d.Color), escapeXML(d.Text))
	buf.WriteString("  </g>\n")
}

// barPath is a w×h rectangle whose right corners are rounded by radius. The
// radius is limited to half the height and to the width.
func barPath(w, h, radius float64) string {
	rad := min(radius, h/2, w)
	if rad <= 0 {
		return fmt.Sprintf("M0,0 H%.2f V%.2f H0 Z", w, h)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "M0,0 H%.2f", w-rad)
	fmt.Fprintf(&sb, " A%.2f,%.2f 0 0 1 %.2f,%.2f", rad, rad, w, rad)
	fmt.Fprintf(&sb, " V%.2f", h-rad)
	fmt.Fprintf(&sb, " A%.2f,%.2f 0 0 1 %.2f,%.2f", rad, rad, w-rad, h)
	sb.WriteString(" H0 Z")
	return sb.String()
}

func hasImages(f *race.Frame) bool {
	for _, b := range f.Bars {
		if !b.Empty && b.Image != "" {
			return true
		}
	}
	return false
}

func textWidth(s string, fontSize int) float64 {
	return float64(utf8.RuneCountInString(s)) * float64(fontSize) * charWidthRatio
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

package annotate

// Geometry is the per-tool variant of an annotation. Variants are immutable:
// every transform returns a fresh value and never aliases point slices with
// its receiver.
type Geometry interface {
	Tool() Tool
	// Points returns the wire-order coordinates: the polyline for freehand,
	// both endpoints for line, the two box corners for rectangle and circle,
	// and the single anchor for text.
	Points() []Point
	translate(dx, dy float64) Geometry
}

// Freehand is a drawn polyline.
type Freehand struct{ Path []Point }

// Line is a straight segment between two endpoints.
type Line struct{ From, To Point }

// Rectangle is an axis-aligned box given by two opposite corners.
type Rectangle struct{ A, B Point }

// Circle is an ellipse inscribed in the box given by two opposite corners.
type Circle struct{ A, B Point }

// Text is a note anchored at a single point.
type Text struct {
	At       Point
	Body     string
	FontSize float64
}

func (f Freehand) Tool() Tool { return ToolFreehand }
func (l Line) Tool() Tool { return ToolLine }
func (r Rectangle) Tool() Tool { return ToolRectangle }
func (c Circle) Tool() Tool { return ToolCircle }
func (t Text) Tool() Tool { return ToolText }

func (f Freehand) Points() []Point { return append([]Point(nil), f.Path...) }
func (l Line) Points() []Point { return []Point{l.From, l.To} }
func (r Rectangle) Points() []Point { return []Point{r.A, r.B} }
func (c Circle) Points() []Point { return []Point{c.A, c.B} }
func (t Text) Points() []Point { return []Point{t.At} }

func (f Freehand) translate(dx, dy float64) Geometry {
	out := make([]Point, len(f.Path))
	for i, p := range f.Path {
		out[i] = Point{p.X + dx, p.Y + dy}
	}
	return Freehand{Path: out}
}

func (l Line) translate(dx, dy float64) Geometry {
	return Line{From: Point{l.From.X + dx, l.From.Y + dy}, To: Point{l.To.X + dx, l.To.Y + dy}}
}

func (r Rectangle) translate(dx, dy float64) Geometry {
	return Rectangle{A: Point{r.A.X + dx, r.A.Y + dy}, B: Point{r.B.X + dx, r.B.Y + dy}}
}

func (c Circle) translate(dx, dy float64) Geometry {
	return Circle{A: Point{c.A.X + dx, c.A.Y + dy}, B: Point{c.B.X + dx, c.B.Y + dy}}
}

func (t Text) translate(dx, dy float64) Geometry {
	return Text{At: Point{t.At.X + dx, t.At.Y + dy}, Body: t.Body, FontSize: t.FontSize}
}

// geometryFor builds the Geometry variant for a tool from wire-order points.
// Returns nil when the tool is unknown or the points are unusable for it.
func geometryFor(tool Tool, points []Point) Geometry {
	switch tool {
	case ToolFreehand:
		if len(points) == 0 {
			return nil
		}
		return Freehand{Path: append([]Point(nil), points...)}
	case ToolLine:
		if len(points) < 2 {
			return nil
		}
		return Line{From: points[0], To: points[len(points)-1]}
	case ToolRectangle:
		if len(points) < 2 {
			return nil
		}
		return Rectangle{A: points[0], B: points[len(points)-1]}
	case ToolCircle:
		if len(points) < 2 {
			return nil
		}
		return Circle{A: points[0], B: points[len(points)-1]}
	case ToolText:
		if len(points) == 0 {
			return nil
		}
		return Text{At: points[0]}
	}
	return nil
}

// withPoints returns a copy of g rebuilt from new wire-order points, keeping
// non-geometric text fields. Used by resize.
func withPoints(g Geometry, points []Point) Geometry {
	if t, ok := g.(Text); ok {
		if len(points) == 0 {
			return g
		}
		return Text{At: points[0], Body: t.Body, FontSize: t.FontSize}
	}
	if out := geometryFor(g.Tool(), points); out != nil {
		return out
	}
	return g
}

// bounds returns the bounding box of the geometry's points.
func bounds(g Geometry) Rect {
	pts := g.Points()
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// anchorCorner returns the tracked corner of a bounding box for a caption
// anchor. Screen coordinates: bottom-left is (minX, maxY).
func anchorCorner(b Rect, a Anchor) Point {
	if a == AnchorTopLeft {
		return Point{X: b.X, Y: b.Y}
	}
	return Point{X: b.X, Y: b.Y + b.Height}
}

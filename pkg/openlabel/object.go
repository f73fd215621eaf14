package openlabel

import (
	"slices"

	"github.com/stobias123/fiftyone/pkg/gen"
	"github.com/stobias123/fiftyone/pkg/labels"
)

// The attribute that records the OpenLABEL key of the object that a label came from
const ObjectIDAttribute = "OpenLABEL_id"

// Object is one annotated entity, such as a tracked car.
// Its top-level shapes apply to the whole sample. Frame overrides are stored in
// FrameObjects, keyed by frame number, and are only one level deep.
type Object struct {
	Key          string
	Name         string
	Type         string
	Stream       string
	OtherAttrs   map[string]any
	FrameObjects map[int]*Object
	IsFrameLevel bool

	shapes [numShapeKinds]*ShapeCollection
}

func NewObject(key string, isFrameLevel bool) *Object {
	o := &Object{
		Key:          key,
		OtherAttrs:   map[string]any{},
		FrameObjects: map[int]*Object{},
		IsFrameLevel: isFrameLevel,
	}
	for k := ShapeKind(0); k < numShapeKinds; k++ {
		o.shapes[k] = NewShapeCollection(k)
	}
	return o
}

// Shapes returns the collection of shapes of the given kind
func (o *Object) Shapes(kind ShapeKind) *ShapeCollection {
	return o.shapes[kind]
}

// Update merges a raw object record into the object.
// If frameNumber is not zero, the record is applied to that frame's override instead.
// Returns the shape coordinates that were skipped because they are not numbers.
func (o *Object) Update(raw map[string]any, frameNumber int) []any {
	if frameNumber != 0 {
		fo := o.FrameObjects[frameNumber]
		if fo == nil {
			fo = NewObject(o.Key, true)
		}
		ignored := fo.Update(raw, 0)
		o.FrameObjects[frameNumber] = fo
		return ignored
	}

	p, ignored := parseObjectRecord(raw)
	for k := ShapeKind(0); k < numShapeKinds; k++ {
		o.shapes[k].Merge(p.shapes[k])
	}
	if o.Name == "" {
		o.Name = p.name
	}
	if o.Type == "" {
		o.Type = p.objType
	}
	if o.Stream == "" {
		o.Stream = p.stream
	}
	for k, v := range p.otherAttrs {
		o.OtherAttrs[k] = v
	}
	return ignored
}

type parsedObject struct {
	shapes     [numShapeKinds]*ShapeCollection
	name       string
	objType    string
	stream     string
	otherAttrs map[string]any
}

func parseObjectRecord(raw map[string]any) (p *parsedObject, ignored []any) {
	p = &parsedObject{}

	// Everything in object_data that is not a shape list becomes a collection attribute
	objectData := gen.CloneMap(asMap(raw["object_data"]))
	lists := [numShapeKinds][]any{}
	for k := ShapeKind(0); k < numShapeKinds; k++ {
		key := k.objectDataKey()
		switch v := objectData[key].(type) {
		case []any:
			lists[k] = v
		case map[string]any:
			lists[k] = []any{v}
		}
		delete(objectData, key)
	}
	for k := ShapeKind(0); k < numShapeKinds; k++ {
		c, bad := parseShapeCollection(k, lists[k], objectData)
		ignored = append(ignored, bad...)
		p.shapes[k] = c
	}

	rest := make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case "name":
			p.name = asString(v)
		case "type":
			p.objType = asString(v)
		case "object_data":
		default:
			rest[k] = v
		}
	}
	p.otherAttrs, p.stream = ParseAttributes(rest)
	return p, ignored
}

// ownStreams returns the streams referenced by the object itself and by its top-level shapes
func (o *Object) ownStreams() []string {
	streams := []string{o.Stream}
	for _, c := range o.shapes {
		streams = append(streams, c.Streams()...)
	}
	return gen.UniqueSorted(streams)
}

// Streams returns every stream referenced by the object, including frame overrides
func (o *Object) Streams() []string {
	streams := o.ownStreams()
	for _, fo := range o.FrameObjects {
		streams = append(streams, fo.Streams()...)
	}
	return gen.UniqueSorted(streams)
}

// IsStreamless is true if neither the object nor its top-level shapes refer to a stream
func (o *Object) IsStreamless() bool {
	return len(o.ownStreams()) == 0
}

// HasShapes is true if the object has any top-level shapes
func (o *Object) HasShapes() bool {
	for _, c := range o.shapes {
		if len(c.Shapes) != 0 {
			return true
		}
	}
	return false
}

// Attributes returns the attributes that are attached to every label of this object.
// A frame override inherits the attributes of its parent.
func (o *Object) Attributes(parent *Object) map[string]any {
	attrs := map[string]any{}
	if parent != nil {
		attrs = parent.Attributes(nil)
	}
	if o.Name != "" {
		attrs["name"] = o.Name
	}
	if o.Key != "" {
		attrs[ObjectIDAttribute] = o.Key
	}
	for k, v := range o.OtherAttrs {
		attrs[k] = gen.CloneValue(v)
	}
	return attrs
}

func (o *Object) labelName(parent *Object) string {
	if o.Type == "" && parent != nil {
		return parent.Type
	}
	return o.Type
}

// Project converts the shapes of one kind into labels, grouped by frame number.
// Labels of the top-level shapes are stored under frame number 0.
func (o *Object) Project(kind ShapeKind, size FrameSize, asPoints bool, skeleton *labels.Skeleton, skeletonKey string) (map[int][]labels.Label, error) {
	result := map[int][]labels.Label{}
	top, err := o.shapes[kind].Project(o.labelName(nil), o.Attributes(nil), size, asPoints, skeleton, skeletonKey)
	if err != nil {
		return nil, err
	}
	result[0] = top
	for _, fn := range gen.SortedIntKeys(o.FrameObjects) {
		fo := o.FrameObjects[fn]
		fl, err := fo.shapes[kind].Project(fo.labelName(o), fo.Attributes(o), size, asPoints, skeleton, skeletonKey)
		if err != nil {
			return nil, err
		}
		result[fn] = append(result[fn], fl...)
	}
	return result, nil
}

func (o *Object) Clone() *Object {
	c := &Object{
		Key:          o.Key,
		Name:         o.Name,
		Type:         o.Type,
		Stream:       o.Stream,
		OtherAttrs:   gen.CloneMap(o.OtherAttrs),
		FrameObjects: make(map[int]*Object, len(o.FrameObjects)),
		IsFrameLevel: o.IsFrameLevel,
	}
	for k, s := range o.shapes {
		c.shapes[k] = s.Clone()
	}
	for fn, fo := range o.FrameObjects {
		c.FrameObjects[fn] = fo.Clone()
	}
	return c
}

// KeepFrames returns a copy of the object, retaining only the listed frame overrides
func (o *Object) KeepFrames(frameNumbers []int) *Object {
	c := o.Clone()
	for fn := range c.FrameObjects {
		if !slices.Contains(frameNumbers, fn) {
			delete(c.FrameObjects, fn)
		}
	}
	return c
}

// FrameNumbers returns the sorted frame numbers of the object's frame overrides
func (o *Object) FrameNumbers() []int {
	return gen.SortedIntKeys(o.FrameObjects)
}

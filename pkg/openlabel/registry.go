package openlabel

import (
	"slices"

	"github.com/cyclopcam/logs"
	"github.com/stobias123/fiftyone/pkg/gen"
)

// Streams and objects are unique by the label file that declares them, and their key within that file
type elementKey struct {
	LabelFileID string
	Key         string
}

// group is an insertion-ordered set of elements, indexed by elementKey
type group[T any] struct {
	elements map[elementKey]T
	order    []elementKey
	byFile   map[string][]string // label file id -> element keys, in insertion order
}

func newGroup[T any]() group[T] {
	return group[T]{
		elements: map[elementKey]T{},
		byFile:   map[string][]string{},
	}
}

func (g *group[T]) get(k elementKey) (T, bool) {
	e, ok := g.elements[k]
	return e, ok
}

func (g *group[T]) put(k elementKey, e T) {
	if _, ok := g.elements[k]; !ok {
		g.order = append(g.order, k)
		g.byFile[k.LabelFileID] = append(g.byFile[k.LabelFileID], k.Key)
	}
	g.elements[k] = e
}

func (g *group[T]) len() int {
	return len(g.order)
}

// StreamRegistry holds every stream of every ingested label file
type StreamRegistry struct {
	log       logs.Log
	streams   group[*Stream]
	uriIndex  map[string][]elementKey
	ingestIDs []string // label file ids, in the order that they were first seen
}

func NewStreamRegistry(log logs.Log) *StreamRegistry {
	return &StreamRegistry{
		log:      log,
		streams:  newGroup[*Stream](),
		uriIndex: map[string][]elementKey{},
	}
}

// Ingest adds or updates the streams in a raw "streams" dict.
// Non-camera streams and malformed entries are skipped.
func (r *StreamRegistry) Ingest(streams map[string]any, labelFileID string, frameNumber int) {
	r.noteLabelFile(labelFileID)
	for _, name := range gen.SortedKeys(streams) {
		raw := asMap(streams[name])
		if raw == nil {
			r.log.Debugf("Ignoring stream '%v' in '%v': not an object", name, labelFileID)
			continue
		}
		key := elementKey{LabelFileID: labelFileID, Key: name}
		s, exists := r.streams.get(key)
		if !exists {
			s = NewStream(name)
		}
		if !s.Update(raw, frameNumber) {
			r.log.Debugf("Ignoring stream '%v' in '%v': only camera streams are supported", name, labelFileID)
			if !exists && frameNumber == 0 {
				continue
			}
		}
		r.streams.put(key, s)
		for _, uri := range s.URIs() {
			if !slices.Contains(r.uriIndex[uri], key) {
				r.uriIndex[uri] = append(r.uriIndex[uri], key)
			}
		}
	}
}

func (r *StreamRegistry) noteLabelFile(labelFileID string) {
	if !slices.Contains(r.ingestIDs, labelFileID) {
		r.ingestIDs = append(r.ingestIDs, labelFileID)
	}
}

// Get returns a stream by label file and name
func (r *StreamRegistry) Get(labelFileID, name string) *Stream {
	s, _ := r.streams.get(elementKey{LabelFileID: labelFileID, Key: name})
	return s
}

// Len returns the number of streams
func (r *StreamRegistry) Len() int {
	return r.streams.len()
}

// URIs returns every URI exposed by any stream
func (r *StreamRegistry) URIs() []string {
	return gen.SortedKeys(r.uriIndex)
}

// LastLabelFileID returns the most recently ingested label file, or "" if nothing has been ingested
func (r *StreamRegistry) LastLabelFileID() string {
	if len(r.ingestIDs) == 0 {
		return ""
	}
	return r.ingestIDs[len(r.ingestIDs)-1]
}

// Resolve finds the streams that apply to uri.
//
// If uri matches no stream, then one streamless, sample-level info is returned for each of
// streamlessIDs. If streamlessIDs is empty, the most recently ingested label file is used.
func (r *StreamRegistry) Resolve(uri string, streamlessIDs ...string) StreamInfos {
	keys := r.uriIndex[uri]
	if len(keys) == 0 {
		if len(streamlessIDs) == 0 {
			if last := r.LastLabelFileID(); last != "" {
				streamlessIDs = []string{last}
			}
		}
		infos := StreamInfos{}
		for _, id := range streamlessIDs {
			infos = append(infos, &StreamInfo{
				LabelFileID:   id,
				FrameNumbers:  []int{},
				IsSampleLevel: true,
			})
		}
		return infos
	}

	infos := make(StreamInfos, 0, len(keys))
	for _, k := range keys {
		s, _ := r.streams.get(k)
		frameNumbers, isSampleLevel := s.FrameNumbers(uri)
		infos = append(infos, &StreamInfo{
			Stream:        s,
			LabelFileID:   k.LabelFileID,
			FrameNumbers:  frameNumbers,
			IsSampleLevel: isSampleLevel,
		})
	}
	return infos
}

// Dimensions returns the frame size declared for uri by any stream.
// Top-level stream properties are preferred over those of frame overrides.
func (r *StreamRegistry) Dimensions(uri string) (FrameSize, bool) {
	keys := slices.Clone(r.uriIndex[uri])
	slices.SortFunc(keys, func(a, b elementKey) int {
		if a.LabelFileID != b.LabelFileID {
			if gen.NaturalLess(a.LabelFileID, b.LabelFileID) {
				return -1
			}
			return 1
		}
		if gen.NaturalLess(a.Key, b.Key) {
			return -1
		} else if gen.NaturalLess(b.Key, a.Key) {
			return 1
		}
		return 0
	})
	for _, k := range keys {
		s, _ := r.streams.get(k)
		if size, ok := s.Dimensions(); ok {
			return size, true
		}
	}
	for _, k := range keys {
		s, _ := r.streams.get(k)
		for _, fn := range gen.SortedIntKeys(s.FrameStreams) {
			fs := s.FrameStreams[fn]
			if !slices.Contains(fs.uris, uri) {
				continue
			}
			if size, ok := fs.Dimensions(); ok {
				return size, true
			}
		}
	}
	return FrameSize{}, false
}

// ObjectRegistry holds objects, either every object of every ingested label file,
// or a filtered view produced by Resolve.
type ObjectRegistry struct {
	log     logs.Log
	objects group[*Object]
}

func NewObjectRegistry(log logs.Log) *ObjectRegistry {
	return &ObjectRegistry{
		log:     log,
		objects: newGroup[*Object](),
	}
}

// Ingest adds or updates the objects in a raw "objects" dict
func (r *ObjectRegistry) Ingest(objects map[string]any, labelFileID string, frameNumber int) {
	for _, key := range gen.SortedKeys(objects) {
		raw := asMap(objects[key])
		if raw == nil {
			r.log.Debugf("Ignoring object '%v' in '%v': not an object", key, labelFileID)
			continue
		}
		k := elementKey{LabelFileID: labelFileID, Key: key}
		obj, exists := r.objects.get(k)
		if !exists {
			obj = NewObject(key, false)
		}
		if ignored := obj.Update(raw, frameNumber); len(ignored) != 0 {
			r.log.Debugf("Ignoring non-numeric coordinates %v of object '%v' in '%v'", ignored, key, labelFileID)
		}
		r.objects.put(k, obj)
	}
}

// Get returns an object by label file and key
func (r *ObjectRegistry) Get(labelFileID, key string) *Object {
	o, _ := r.objects.get(elementKey{LabelFileID: labelFileID, Key: key})
	return o
}

// Len returns the number of objects
func (r *ObjectRegistry) Len() int {
	return r.objects.len()
}

// All returns the objects in insertion order
func (r *ObjectRegistry) All() []*Object {
	all := make([]*Object, 0, len(r.objects.order))
	for _, k := range r.objects.order {
		all = append(all, r.objects.elements[k])
	}
	return all
}

// Resolve returns a new registry holding only the objects (and frames) that apply to the
// given streams. Objects in the result are copies, and never alias objects in r.
func (r *ObjectRegistry) Resolve(infos StreamInfos) *ObjectRegistry {
	type selection struct {
		keepAll bool
		frames  []int
	}
	selected := map[elementKey]*selection{}
	order := []elementKey{}

	for _, info := range infos {
		for _, key := range r.objects.byFile[info.LabelFileID] {
			k := elementKey{LabelFileID: info.LabelFileID, Key: key}
			obj := r.objects.elements[k]
			sel := selected[k]
			if sel == nil {
				sel = &selection{}
			}
			switch {
			case info.IsStreamless():
				if obj.IsFrameLevel || !obj.IsStreamless() {
					continue
				}
				sel.keepAll = true
			case info.IsSampleLevel:
				sel.keepAll = true
			default:
				sel.frames = append(sel.frames, info.FrameNumbers...)
			}
			if selected[k] == nil {
				selected[k] = sel
				order = append(order, k)
			}
		}
	}

	result := NewObjectRegistry(r.log)
	for _, k := range order {
		sel := selected[k]
		obj := r.objects.elements[k]
		if sel.keepAll {
			result.objects.put(k, obj.Clone())
			continue
		}
		filtered := obj.KeepFrames(sel.frames)
		if len(filtered.FrameObjects) == 0 && !filtered.HasShapes() {
			continue
		}
		result.objects.put(k, filtered)
	}
	return result
}

package notefs

import (
	"encoding/xml"
	"net/http"

	"golang.org/x/net/webdav"
)

// DeadProps/Patch implement have_props/get_props (spec.md §4.5): the Go
// webdav library asks for these per-file, via an optional DeadPropsHolder
// interface, rather than per-filesystem as the original's dav_server trait
// does — so Handle and dirFile both implement it rather than FS. Extended
// property storage is explicitly out of scope (spec.md §1 Non-goals), so
// every path that resolves reports zero properties, and a patch attempt is
// rejected rather than silently accepted.

func (h *Handle) DeadProps() (map[xml.Name]webdav.Property, error) {
	return map[xml.Name]webdav.Property{}, nil
}

func (h *Handle) Patch(patches []webdav.Proppatch) ([]webdav.Propstat, error) {
	return rejectPatch(patches), nil
}

func (d *dirFile) DeadProps() (map[xml.Name]webdav.Property, error) {
	return map[xml.Name]webdav.Property{}, nil
}

func (d *dirFile) Patch(patches []webdav.Proppatch) ([]webdav.Propstat, error) {
	return rejectPatch(patches), nil
}

func rejectPatch(patches []webdav.Proppatch) []webdav.Propstat {
	var names []webdav.Property
	for _, p := range patches {
		names = append(names, p.Props...)
	}
	return []webdav.Propstat{{
		Status: http.StatusForbidden,
		Props:  names,
	}}
}

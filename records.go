// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

// ObjectReference locates a versioned workspace object, e.g. "1779/523209/1".
// The client never parses it.
type ObjectReference string

// refPresence tracks a ref member that arrived as "". Any other ref is
// written only when non-empty, so an absent ref stays absent.
type refPresence struct {
	emptyRef bool
}

func (p refPresence) hasRef(ref ObjectReference) bool {
	return ref != "" || p.emptyRef
}

// readRef consumes the ref member, noting whether it was sent empty.
func readRef(r *objectReader, ref *ObjectReference, p *refPresence) error {
	present := r.present("ref")
	if err := r.field("ref", ref); err != nil {
		return err
	}
	p.emptyRef = present && *ref == ""
	return nil
}

// TaxonInfo is one taxon's identity plus its display name.
type TaxonInfo struct {
	Ref            ObjectReference
	ScientificName *string
	Extra          Extra

	refPresence
}

func (t TaxonInfo) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field("ref", t.hasRef(t.Ref), t.Ref)
	w.field("scientific_name", t.ScientificName != nil, t.ScientificName)
	w.extra(t.Extra, "ref", "scientific_name")
	return w.bytes()
}

func (t *TaxonInfo) UnmarshalJSON(data []byte) error {
	r, err := readObject("TaxonInfo", data)
	if err != nil {
		return err
	}
	var v TaxonInfo
	if err := readRef(r, &v.Ref, &v.refPresence); err != nil {
		return err
	}
	if err := r.field("scientific_name", &v.ScientificName); err != nil {
		return err
	}
	v.Extra = r.extra()
	*t = v
	return nil
}

func (t TaxonInfo) String() string {
	return describe("TaxonInfo",
		"ref", t.Ref,
		"scientificName", t.ScientificName,
		"additionalProperties", t.Extra)
}

// DecoratedLineage lists a taxon's ancestors, nearest parent first and the
// root last. The queried taxon itself is not included.
type DecoratedLineage struct {
	Lineage []TaxonInfo
	Extra   Extra
}

func (d DecoratedLineage) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field("lineage", d.Lineage != nil, d.Lineage)
	w.extra(d.Extra, "lineage")
	return w.bytes()
}

func (d *DecoratedLineage) UnmarshalJSON(data []byte) error {
	r, err := readObject("DecoratedLineage", data)
	if err != nil {
		return err
	}
	var v DecoratedLineage
	if err := r.field("lineage", &v.Lineage); err != nil {
		return err
	}
	v.Extra = r.extra()
	*d = v
	return nil
}

func (d DecoratedLineage) String() string {
	return describe("DecoratedLineage",
		"lineage", d.Lineage,
		"additionalProperties", d.Extra)
}

// DecoratedScientificLineage lists a taxon's ancestors starting at the root
// and descending towards the queried taxon, which is not included.
type DecoratedScientificLineage struct {
	DecoratedScientificLineage []TaxonInfo
	Extra                      Extra
}

func (d DecoratedScientificLineage) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field("decorated_scientific_lineage", d.DecoratedScientificLineage != nil, d.DecoratedScientificLineage)
	w.extra(d.Extra, "decorated_scientific_lineage")
	return w.bytes()
}

func (d *DecoratedScientificLineage) UnmarshalJSON(data []byte) error {
	r, err := readObject("DecoratedScientificLineage", data)
	if err != nil {
		return err
	}
	var v DecoratedScientificLineage
	if err := r.field("decorated_scientific_lineage", &v.DecoratedScientificLineage); err != nil {
		return err
	}
	v.Extra = r.extra()
	*d = v
	return nil
}

func (d DecoratedScientificLineage) String() string {
	return describe("DecoratedScientificLineage",
		"decoratedScientificLineage", d.DecoratedScientificLineage,
		"additionalProperties", d.Extra)
}

// DecoratedChildren lists the direct children of a taxon in server order.
type DecoratedChildren struct {
	DecoratedChildren []TaxonInfo
	Extra             Extra
}

func (d DecoratedChildren) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field("decorated_children", d.DecoratedChildren != nil, d.DecoratedChildren)
	w.extra(d.Extra, "decorated_children")
	return w.bytes()
}

func (d *DecoratedChildren) UnmarshalJSON(data []byte) error {
	r, err := readObject("DecoratedChildren", data)
	if err != nil {
		return err
	}
	var v DecoratedChildren
	if err := r.field("decorated_children", &v.DecoratedChildren); err != nil {
		return err
	}
	v.Extra = r.extra()
	*d = v
	return nil
}

func (d DecoratedChildren) String() string {
	return describe("DecoratedChildren",
		"decoratedChildren", d.DecoratedChildren,
		"additionalProperties", d.Extra)
}

// GetAllDataParams selects a taxon and the optional parts of its TaxonData.
// The flags are 0/1 integers; nil leaves the choice to the server.
type GetAllDataParams struct {
	Ref                               ObjectReference
	IncludeDecoratedScientificLineage *int64
	IncludeDecoratedChildren          *int64
	ExcludeChildren                   *int64
	Extra                             Extra

	refPresence
}

var getAllDataParamsFields = []string{
	"include_decorated_scientific_lineage",
	"include_decorated_children",
	"exclude_children",
}

func (p *GetAllDataParams) flags() []**int64 {
	return []**int64{
		&p.IncludeDecoratedScientificLineage,
		&p.IncludeDecoratedChildren,
		&p.ExcludeChildren,
	}
}

func (p GetAllDataParams) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field("ref", p.hasRef(p.Ref), p.Ref)
	for i, flag := range p.flags() {
		w.field(getAllDataParamsFields[i], *flag != nil, *flag)
	}
	w.extra(p.Extra, append([]string{"ref"}, getAllDataParamsFields...)...)
	return w.bytes()
}

func (p *GetAllDataParams) UnmarshalJSON(data []byte) error {
	r, err := readObject("GetAllDataParams", data)
	if err != nil {
		return err
	}
	var v GetAllDataParams
	if err := readRef(r, &v.Ref, &v.refPresence); err != nil {
		return err
	}
	for i, dst := range v.flags() {
		if err := r.field(getAllDataParamsFields[i], dst); err != nil {
			return err
		}
	}
	v.Extra = r.extra()
	*p = v
	return nil
}

func (p GetAllDataParams) String() string {
	return describe("GetAllDataParams",
		"ref", p.Ref,
		"includeDecoratedScientificLineage", p.IncludeDecoratedScientificLineage,
		"includeDecoratedChildren", p.IncludeDecoratedChildren,
		"excludeChildren", p.ExcludeChildren,
		"additionalProperties", p.Extra)
}

// GetDecoratedScientificLineageParams names the taxon whose lineage is wanted.
type GetDecoratedScientificLineageParams struct {
	Ref   ObjectReference
	Extra Extra

	refPresence
}

func (p GetDecoratedScientificLineageParams) MarshalJSON() ([]byte, error) {
	return marshalRefParams(p.Ref, p.refPresence, p.Extra)
}

func (p *GetDecoratedScientificLineageParams) UnmarshalJSON(data []byte) error {
	var v GetDecoratedScientificLineageParams
	extra, err := unmarshalRefParams("GetDecoratedScientificLineageParams", data, &v.Ref, &v.refPresence)
	if err != nil {
		return err
	}
	v.Extra = extra
	*p = v
	return nil
}

func (p GetDecoratedScientificLineageParams) String() string {
	return describe("GetDecoratedScientificLineageParams", "ref", p.Ref, "additionalProperties", p.Extra)
}

// GetDecoratedChildrenParams names the taxon whose children are wanted.
type GetDecoratedChildrenParams struct {
	Ref   ObjectReference
	Extra Extra

	refPresence
}

func (p GetDecoratedChildrenParams) MarshalJSON() ([]byte, error) {
	return marshalRefParams(p.Ref, p.refPresence, p.Extra)
}

func (p *GetDecoratedChildrenParams) UnmarshalJSON(data []byte) error {
	var v GetDecoratedChildrenParams
	extra, err := unmarshalRefParams("GetDecoratedChildrenParams", data, &v.Ref, &v.refPresence)
	if err != nil {
		return err
	}
	v.Extra = extra
	*p = v
	return nil
}

func (p GetDecoratedChildrenParams) String() string {
	return describe("GetDecoratedChildrenParams", "ref", p.Ref, "additionalProperties", p.Extra)
}

func marshalRefParams(ref ObjectReference, p refPresence, extra Extra) ([]byte, error) {
	w := newObjectWriter()
	w.field("ref", p.hasRef(ref), ref)
	w.extra(extra, "ref")
	return w.bytes()
}

func unmarshalRefParams(record string, data []byte, ref *ObjectReference, p *refPresence) (Extra, error) {
	r, err := readObject(record, data)
	if err != nil {
		return Extra{}, err
	}
	if err := readRef(r, ref, p); err != nil {
		return Extra{}, err
	}
	return r.extra(), nil
}

// TaxonData aggregates everything known about one taxon. Which fields are
// set depends on the request flags and on the type of the stored object.
type TaxonData struct {
	Parent                     *ObjectReference
	Children                   []ObjectReference
	DecoratedChildren          []TaxonInfo
	ScientificLineage          []string
	DecoratedScientificLineage []TaxonInfo
	ScientificName             *string
	TaxonomicID                *int64
	Kingdom                    *string
	Domain                     *string
	GeneticCode                *int64
	Aliases                    []string
	ObjInfo                    *ObjectInfo
	Extra                      Extra
}

var taxonDataFields = []string{
	"parent",
	"children",
	"decorated_children",
	"scientific_lineage",
	"decorated_scientific_lineage",
	"scientific_name",
	"taxonomic_id",
	"kingdom",
	"domain",
	"genetic_code",
	"aliases",
	"obj_info",
}

func (d *TaxonData) fields() []interface{} {
	return []interface{}{
		&d.Parent,
		&d.Children,
		&d.DecoratedChildren,
		&d.ScientificLineage,
		&d.DecoratedScientificLineage,
		&d.ScientificName,
		&d.TaxonomicID,
		&d.Kingdom,
		&d.Domain,
		&d.GeneticCode,
		&d.Aliases,
		&d.ObjInfo,
	}
}

func (d TaxonData) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field("parent", d.Parent != nil, d.Parent)
	w.field("children", d.Children != nil, d.Children)
	w.field("decorated_children", d.DecoratedChildren != nil, d.DecoratedChildren)
	w.field("scientific_lineage", d.ScientificLineage != nil, d.ScientificLineage)
	w.field("decorated_scientific_lineage", d.DecoratedScientificLineage != nil, d.DecoratedScientificLineage)
	w.field("scientific_name", d.ScientificName != nil, d.ScientificName)
	w.field("taxonomic_id", d.TaxonomicID != nil, d.TaxonomicID)
	w.field("kingdom", d.Kingdom != nil, d.Kingdom)
	w.field("domain", d.Domain != nil, d.Domain)
	w.field("genetic_code", d.GeneticCode != nil, d.GeneticCode)
	w.field("aliases", d.Aliases != nil, d.Aliases)
	w.field("obj_info", d.ObjInfo != nil, d.ObjInfo)
	w.extra(d.Extra, taxonDataFields...)
	return w.bytes()
}

func (d *TaxonData) UnmarshalJSON(data []byte) error {
	r, err := readObject("TaxonData", data)
	if err != nil {
		return err
	}
	var v TaxonData
	for i, dst := range v.fields() {
		if err := r.field(taxonDataFields[i], dst); err != nil {
			return err
		}
	}
	v.Extra = r.extra()
	*d = v
	return nil
}

func (d TaxonData) String() string {
	return describe("TaxonData",
		"parent", d.Parent,
		"children", d.Children,
		"decoratedChildren", d.DecoratedChildren,
		"scientificLineage", d.ScientificLineage,
		"decoratedScientificLineage", d.DecoratedScientificLineage,
		"scientificName", d.ScientificName,
		"taxonomicId", d.TaxonomicID,
		"kingdom", d.Kingdom,
		"domain", d.Domain,
		"geneticCode", d.GeneticCode,
		"aliases", d.Aliases,
		"objInfo", d.ObjInfo,
		"additionalProperties", d.Extra)
}

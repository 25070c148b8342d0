// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

// ObjectInfo is the generic workspace metadata of a stored object.
type ObjectInfo struct {
	ObjectID                 *int64
	ObjectName               *string
	ObjectReference          *string
	ObjectReferenceVersioned *string
	TypeString               *string
	SaveDate                 *string
	Version                  *int64
	SavedBy                  *string
	WorkspaceID              *int64
	WorkspaceName            *string
	ObjectChecksum           *string
	ObjectSize               *int64
	ObjectMetadata           map[string]string
	Extra                    Extra
}

var objectInfoFields = []string{
	"object_id",
	"object_name",
	"object_reference",
	"object_reference_versioned",
	"type_string",
	"save_date",
	"version",
	"saved_by",
	"workspace_id",
	"workspace_name",
	"object_checksum",
	"object_size",
	"object_metadata",
}

func (o *ObjectInfo) fields() []interface{} {
	return []interface{}{
		&o.ObjectID,
		&o.ObjectName,
		&o.ObjectReference,
		&o.ObjectReferenceVersioned,
		&o.TypeString,
		&o.SaveDate,
		&o.Version,
		&o.SavedBy,
		&o.WorkspaceID,
		&o.WorkspaceName,
		&o.ObjectChecksum,
		&o.ObjectSize,
		&o.ObjectMetadata,
	}
}

func (o ObjectInfo) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field("object_id", o.ObjectID != nil, o.ObjectID)
	w.field("object_name", o.ObjectName != nil, o.ObjectName)
	w.field("object_reference", o.ObjectReference != nil, o.ObjectReference)
	w.field("object_reference_versioned", o.ObjectReferenceVersioned != nil, o.ObjectReferenceVersioned)
	w.field("type_string", o.TypeString != nil, o.TypeString)
	w.field("save_date", o.SaveDate != nil, o.SaveDate)
	w.field("version", o.Version != nil, o.Version)
	w.field("saved_by", o.SavedBy != nil, o.SavedBy)
	w.field("workspace_id", o.WorkspaceID != nil, o.WorkspaceID)
	w.field("workspace_name", o.WorkspaceName != nil, o.WorkspaceName)
	w.field("object_checksum", o.ObjectChecksum != nil, o.ObjectChecksum)
	w.field("object_size", o.ObjectSize != nil, o.ObjectSize)
	w.field("object_metadata", o.ObjectMetadata != nil, o.ObjectMetadata)
	w.extra(o.Extra, objectInfoFields...)
	return w.bytes()
}

func (o *ObjectInfo) UnmarshalJSON(data []byte) error {
	r, err := readObject("ObjectInfo", data)
	if err != nil {
		return err
	}
	var v ObjectInfo
	for i, dst := range v.fields() {
		if err := r.field(objectInfoFields[i], dst); err != nil {
			return err
		}
	}
	v.Extra = r.extra()
	*o = v
	return nil
}

func (o ObjectInfo) String() string {
	return describe("ObjectInfo",
		"objectId", o.ObjectID,
		"objectName", o.ObjectName,
		"objectReference", o.ObjectReference,
		"objectReferenceVersioned", o.ObjectReferenceVersioned,
		"typeString", o.TypeString,
		"saveDate", o.SaveDate,
		"version", o.Version,
		"savedBy", o.SavedBy,
		"workspaceId", o.WorkspaceID,
		"workspaceName", o.WorkspaceName,
		"objectChecksum", o.ObjectChecksum,
		"objectSize", o.ObjectSize,
		"objectMetadata", o.ObjectMetadata,
		"additionalProperties", o.Extra)
}

// ObjectProvenanceAction describes one step that produced a workspace object.
type ObjectProvenanceAction struct {
	Time                      *string
	ServiceName               *string
	ServiceVersion            *string
	ServiceMethod             *string
	MethodParameters          []string
	ScriptName                *string
	ScriptVersion             *string
	ScriptCommandLine         *string
	InputObjectReferences     []string
	ValidatedObjectReferences []string
	IntermediateInputIDs      []string
	IntermediateOutputIDs     []string
	ExternalData              []ExternalDataUnit
	Description               *string
	Extra                     Extra
}

var provenanceActionFields = []string{
	"time",
	"service_name",
	"service_version",
	"service_method",
	"method_parameters",
	"script_name",
	"script_version",
	"script_command_line",
	"input_object_references",
	"validated_object_references",
	"intermediate_input_ids",
	"intermediate_output_ids",
	"external_data",
	"description",
}

func (a *ObjectProvenanceAction) fields() []interface{} {
	return []interface{}{
		&a.Time,
		&a.ServiceName,
		&a.ServiceVersion,
		&a.ServiceMethod,
		&a.MethodParameters,
		&a.ScriptName,
		&a.ScriptVersion,
		&a.ScriptCommandLine,
		&a.InputObjectReferences,
		&a.ValidatedObjectReferences,
		&a.IntermediateInputIDs,
		&a.IntermediateOutputIDs,
		&a.ExternalData,
		&a.Description,
	}
}

func (a ObjectProvenanceAction) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field("time", a.Time != nil, a.Time)
	w.field("service_name", a.ServiceName != nil, a.ServiceName)
	w.field("service_version", a.ServiceVersion != nil, a.ServiceVersion)
	w.field("service_method", a.ServiceMethod != nil, a.ServiceMethod)
	w.field("method_parameters", a.MethodParameters != nil, a.MethodParameters)
	w.field("script_name", a.ScriptName != nil, a.ScriptName)
	w.field("script_version", a.ScriptVersion != nil, a.ScriptVersion)
	w.field("script_command_line", a.ScriptCommandLine != nil, a.ScriptCommandLine)
	w.field("input_object_references", a.InputObjectReferences != nil, a.InputObjectReferences)
	w.field("validated_object_references", a.ValidatedObjectReferences != nil, a.ValidatedObjectReferences)
	w.field("intermediate_input_ids", a.IntermediateInputIDs != nil, a.IntermediateInputIDs)
	w.field("intermediate_output_ids", a.IntermediateOutputIDs != nil, a.IntermediateOutputIDs)
	w.field("external_data", a.ExternalData != nil, a.ExternalData)
	w.field("description", a.Description != nil, a.Description)
	w.extra(a.Extra, provenanceActionFields...)
	return w.bytes()
}

func (a *ObjectProvenanceAction) UnmarshalJSON(data []byte) error {
	r, err := readObject("ObjectProvenanceAction", data)
	if err != nil {
		return err
	}
	var v ObjectProvenanceAction
	for i, dst := range v.fields() {
		if err := r.field(provenanceActionFields[i], dst); err != nil {
			return err
		}
	}
	v.Extra = r.extra()
	*a = v
	return nil
}

func (a ObjectProvenanceAction) String() string {
	return describe("ObjectProvenanceAction",
		"time", a.Time,
		"serviceName", a.ServiceName,
		"serviceVersion", a.ServiceVersion,
		"serviceMethod", a.ServiceMethod,
		"methodParameters", a.MethodParameters,
		"scriptName", a.ScriptName,
		"scriptVersion", a.ScriptVersion,
		"scriptCommandLine", a.ScriptCommandLine,
		"inputObjectReferences", a.InputObjectReferences,
		"validatedObjectReferences", a.ValidatedObjectReferences,
		"intermediateInputIds", a.IntermediateInputIDs,
		"intermediateOutputIds", a.IntermediateOutputIDs,
		"externalData", a.ExternalData,
		"description", a.Description,
		"additionalProperties", a.Extra)
}

// ExternalDataUnit points at data that came from outside the workspace.
type ExternalDataUnit struct {
	ResourceName        *string
	ResourceURL         *string
	ResourceVersion     *string
	ResourceReleaseDate *string
	DataURL             *string
	DataID              *string
	Description         *string
	Extra               Extra
}

var externalDataUnitFields = []string{
	"resource_name",
	"resource_url",
	"resource_version",
	"resource_release_date",
	"data_url",
	"data_id",
	"description",
}

func (u *ExternalDataUnit) fields() []**string {
	return []**string{
		&u.ResourceName,
		&u.ResourceURL,
		&u.ResourceVersion,
		&u.ResourceReleaseDate,
		&u.DataURL,
		&u.DataID,
		&u.Description,
	}
}

func (u ExternalDataUnit) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	for i, f := range u.fields() {
		w.field(externalDataUnitFields[i], *f != nil, *f)
	}
	w.extra(u.Extra, externalDataUnitFields...)
	return w.bytes()
}

func (u *ExternalDataUnit) UnmarshalJSON(data []byte) error {
	r, err := readObject("ExternalDataUnit", data)
	if err != nil {
		return err
	}
	var v ExternalDataUnit
	for i, dst := range v.fields() {
		if err := r.field(externalDataUnitFields[i], dst); err != nil {
			return err
		}
	}
	v.Extra = r.extra()
	*u = v
	return nil
}

func (u ExternalDataUnit) String() string {
	return describe("ExternalDataUnit",
		"resourceName", u.ResourceName,
		"resourceUrl", u.ResourceURL,
		"resourceVersion", u.ResourceVersion,
		"resourceReleaseDate", u.ResourceReleaseDate,
		"dataUrl", u.DataURL,
		"dataId", u.DataID,
		"description", u.Description,
		"additionalProperties", u.Extra)
}

package schema

// Chainable constructors used by the SDL builder and by tests that assemble
// schemas programmatically. The graph they produce is treated as immutable
// once handed to a mask or executor.

// NewSchema creates an empty schema with the given description.
func NewSchema(description string) *Schema {
	return &Schema{
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
		Description: description,
	}
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

// AddType registers t under its name, replacing any previous registration.
func (s *Schema) AddType(t *Type) *Schema {
	s.Types[t.Name] = t
	return s
}

// AddDirective registers d under its name.
func (s *Schema) AddDirective(d *Directive) *Schema {
	s.Directives[d.Name] = d
	return s
}

// NewType creates a named type of the given kind.
func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type             { t.Fields = append(t.Fields, f); return t }
func (t *Type) AddInterface(name string) *Type      { t.Interfaces = append(t.Interfaces, name); return t }
func (t *Type) AddPossibleType(name string) *Type   { t.PossibleTypes = append(t.PossibleTypes, name); return t }
func (t *Type) AddEnumValue(v *EnumValue) *Type     { t.EnumValues = append(t.EnumValues, v); return t }
func (t *Type) AddInputField(v *InputValue) *Type   { t.InputFields = append(t.InputFields, v); return t }
func (t *Type) SetOneOf(oneOf bool) *Type           { t.OneOf = oneOf; return t }

// SetMeta tags the type with a metadata key/value pair.
func (t *Type) SetMeta(key, value string) *Type {
	if t.Metadata == nil {
		t.Metadata = Metadata{}
	}
	t.Metadata[key] = value
	return t
}

// NewField creates a field with the given return type.
func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

func (f *Field) AddArgument(a *InputValue) *Field { f.Arguments = append(f.Arguments, a); return f }

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

// SetMeta tags the field with a metadata key/value pair.
func (f *Field) SetMeta(key, value string) *Field {
	if f.Metadata == nil {
		f.Metadata = Metadata{}
	}
	f.Metadata[key] = value
	return f
}

// NewInputValue creates an argument or input-field definition.
func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

func (v *InputValue) SetDefault(def any) *InputValue { v.DefaultValue = def; return v }

func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

// SetMeta tags the input value with a metadata key/value pair.
func (v *InputValue) SetMeta(key, value string) *InputValue {
	if v.Metadata == nil {
		v.Metadata = Metadata{}
	}
	v.Metadata[key] = value
	return v
}

// NewEnumValue creates an enum value definition.
func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (e *EnumValue) Deprecate(reason string) *EnumValue {
	e.IsDeprecated = true
	e.DeprecationReason = reason
	return e
}

// SetMeta tags the enum value with a metadata key/value pair.
func (e *EnumValue) SetMeta(key, value string) *EnumValue {
	if e.Metadata == nil {
		e.Metadata = Metadata{}
	}
	e.Metadata[key] = value
	return e
}

// NewDirective creates a directive definition.
func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) AddArgument(a *InputValue) *Directive {
	d.Arguments = append(d.Arguments, a)
	return d
}

func (d *Directive) SetRepeatable(r bool) *Directive { d.IsRepeatable = r; return d }

func (d *Directive) AddLocations(locs ...string) *Directive {
	d.Locations = append(d.Locations, locs...)
	return d
}

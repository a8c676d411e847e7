package schema

import (
	"fmt"
	"strconv"

	language "github.com/hanpama/graphmask/internal/language"
)

// BuildFromSDL parses an SDL document and builds the schema element graph.
// Type/schema extensions are merged into their base definitions. Directives on
// members are folded into metadata: @meta(key:, value:) sets an explicit tag,
// @deprecated/@specifiedBy/@oneOf keep their standard meaning, and any other
// directive is recorded as a bare metadata flag under the directive's name.
func BuildFromSDL(name, sdl string) (*Schema, error) {
	doc, err := language.ParseSchema(name, sdl)
	if err != nil {
		return nil, err
	}

	s := NewSchema("")
	s.AddType(stringType).
		AddType(intType).
		AddType(floatType).
		AddType(booleanType).
		AddType(idType)
	s.AddDirective(includeDirective).
		AddDirective(skipDirective).
		AddDirective(metaDirective)

	for _, def := range doc.Definitions {
		t, err := buildDefinition(def)
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}
	for _, ext := range doc.Extensions {
		base := s.Types[ext.Name]
		if base == nil {
			return nil, fmt.Errorf("cannot extend unknown type %q", ext.Name)
		}
		if err := mergeExtension(base, ext); err != nil {
			return nil, err
		}
	}
	for _, dd := range doc.Directives {
		s.AddDirective(buildDirectiveDef(dd))
	}

	applyRootTypes(s, doc)
	if s.QueryType == "" {
		if _, ok := s.Types["Query"]; ok {
			s.SetQueryType("Query")
		}
	}
	if s.MutationType == "" {
		if _, ok := s.Types["Mutation"]; ok {
			s.SetMutationType("Mutation")
		}
	}
	if s.SubscriptionType == "" {
		if _, ok := s.Types["Subscription"]; ok {
			s.SetSubscriptionType("Subscription")
		}
	}

	resolveInterfaceImplementers(s)
	if err := checkReferences(s); err != nil {
		return nil, err
	}
	return s, nil
}

func applyRootTypes(s *Schema, doc *language.SchemaDocument) {
	apply := func(defs []*language.SchemaDefinition) {
		for _, sd := range defs {
			for _, op := range sd.OperationTypes {
				switch op.Operation {
				case language.Query:
					s.SetQueryType(op.Type)
				case language.Mutation:
					s.SetMutationType(op.Type)
				case language.Subscription:
					s.SetSubscriptionType(op.Type)
				}
			}
		}
	}
	apply(doc.Schema)
	apply(doc.SchemaExtension)
}

func buildDefinition(def *language.Definition) (*Type, error) {
	var kind TypeKind
	switch def.Kind {
	case language.Object:
		kind = TypeKindObject
	case language.Interface:
		kind = TypeKindInterface
	case language.Union:
		kind = TypeKindUnion
	case language.Enum:
		kind = TypeKindEnum
	case language.Scalar:
		kind = TypeKindScalar
	case language.InputObject:
		kind = TypeKindInputObject
	default:
		return nil, fmt.Errorf("unsupported definition kind %q for %s", def.Kind, def.Name)
	}

	t := NewType(def.Name, kind, def.Description)
	applyTypeDirectives(t, def.Directives)
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	for _, name := range def.Types {
		t.AddPossibleType(name)
	}
	for _, fd := range def.Fields {
		if kind == TypeKindInputObject {
			t.AddInputField(buildInputValueDef(fd.Name, fd.Description, fd.Type, fd.DefaultValue, fd.Directives))
		} else {
			t.AddField(buildFieldDef(fd))
		}
	}
	for _, ev := range def.EnumValues {
		t.AddEnumValue(buildEnumValueDef(ev))
	}
	return t, nil
}

func mergeExtension(base *Type, ext *language.Definition) error {
	for _, name := range ext.Interfaces {
		base.AddInterface(name)
	}
	for _, name := range ext.Types {
		base.AddPossibleType(name)
	}
	for _, fd := range ext.Fields {
		if base.Kind == TypeKindInputObject {
			if base.GetInputField(fd.Name) != nil {
				return fmt.Errorf("duplicate input field %s.%s in extension", base.Name, fd.Name)
			}
			base.AddInputField(buildInputValueDef(fd.Name, fd.Description, fd.Type, fd.DefaultValue, fd.Directives))
			continue
		}
		if base.GetField(fd.Name) != nil {
			return fmt.Errorf("duplicate field %s.%s in extension", base.Name, fd.Name)
		}
		base.AddField(buildFieldDef(fd))
	}
	for _, ev := range ext.EnumValues {
		base.AddEnumValue(buildEnumValueDef(ev))
	}
	applyTypeDirectives(base, ext.Directives)
	return nil
}

func buildFieldDef(fd *language.FieldDefinition) *Field {
	f := NewField(fd.Name, fd.Description, typeRefFromAST(fd.Type))
	for _, ad := range fd.Arguments {
		f.AddArgument(buildInputValueDef(ad.Name, ad.Description, ad.Type, ad.DefaultValue, ad.Directives))
	}
	for _, dir := range fd.Directives {
		switch dir.Name {
		case "deprecated":
			f.Deprecate(directiveStringArg(dir, "reason"))
		default:
			key, value := metadataTag(dir)
			f.SetMeta(key, value)
		}
	}
	return f
}

func buildInputValueDef(name, description string, typ *language.Type, def *language.Value, directives language.DirectiveList) *InputValue {
	iv := NewInputValue(name, description, typeRefFromAST(typ))
	if def != nil {
		iv.SetDefault(goValue(def))
	}
	for _, dir := range directives {
		switch dir.Name {
		case "deprecated":
			iv.Deprecate(directiveStringArg(dir, "reason"))
		default:
			key, value := metadataTag(dir)
			iv.SetMeta(key, value)
		}
	}
	return iv
}

func buildEnumValueDef(ev *language.EnumValueDefinition) *EnumValue {
	e := NewEnumValue(ev.Name, ev.Description)
	for _, dir := range ev.Directives {
		switch dir.Name {
		case "deprecated":
			e.Deprecate(directiveStringArg(dir, "reason"))
		default:
			key, value := metadataTag(dir)
			e.SetMeta(key, value)
		}
	}
	return e
}

func applyTypeDirectives(t *Type, directives language.DirectiveList) {
	for _, dir := range directives {
		switch dir.Name {
		case "specifiedBy":
			url := directiveStringArg(dir, "url")
			t.SpecifiedByURL = &url
		case "oneOf":
			t.SetOneOf(true)
		default:
			key, value := metadataTag(dir)
			t.SetMeta(key, value)
		}
	}
}

func buildDirectiveDef(dd *language.DirectiveDefinition) *Directive {
	d := NewDirective(dd.Name, dd.Description).SetRepeatable(dd.IsRepeatable)
	for _, loc := range dd.Locations {
		d.AddLocations(string(loc))
	}
	for _, ad := range dd.Arguments {
		d.AddArgument(buildInputValueDef(ad.Name, ad.Description, ad.Type, ad.DefaultValue, ad.Directives))
	}
	return d
}

// metadataTag maps a directive occurrence to a metadata key/value pair.
// @meta(key: "k", value: "v") yields (k, v); any other directive yields its
// own name as a bare flag.
func metadataTag(dir *language.Directive) (key, value string) {
	if dir.Name == "meta" {
		return directiveStringArg(dir, "key"), directiveStringArg(dir, "value")
	}
	return dir.Name, ""
}

func directiveStringArg(dir *language.Directive, name string) string {
	for _, arg := range dir.Arguments {
		if arg.Name == name && arg.Value != nil {
			return arg.Value.Raw
		}
	}
	return ""
}

func typeRefFromAST(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(typeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	return ListType(typeRefFromAST(t.Elem))
}

func goValue(v *language.Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case language.IntValue:
		n, _ := strconv.Atoi(v.Raw)
		return n
	case language.FloatValue:
		f, _ := strconv.ParseFloat(v.Raw, 64)
		return f
	case language.StringValue, language.BlockValue, language.EnumValue:
		return v.Raw
	case language.BooleanValue:
		return v.Raw == "true"
	case language.NullValue:
		return nil
	case language.ListValue:
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			out[i] = goValue(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any, len(v.Children))
		for _, c := range v.Children {
			m[c.Name] = goValue(c.Value)
		}
		return m
	default:
		return v.Raw
	}
}

// resolveInterfaceImplementers records, on every interface type, the object
// types implementing it. Union membership comes straight from the SDL; for
// interfaces the relation is declared on the implementer side and inverted
// here so masks can enumerate possible types without scanning the schema.
func resolveInterfaceImplementers(s *Schema) {
	for _, t := range s.Types {
		if t.Kind != TypeKindObject && t.Kind != TypeKindInterface {
			continue
		}
		for _, ifaceName := range t.Interfaces {
			iface := s.Types[ifaceName]
			if iface == nil || iface.Kind != TypeKindInterface {
				continue
			}
			iface.AddPossibleType(t.Name)
		}
	}
}

func checkReferences(s *Schema) error {
	check := func(owner string, tr *TypeRef) error {
		name := GetNamedType(tr)
		if name == "" {
			return fmt.Errorf("%s has no named type", owner)
		}
		if s.Types[name] == nil {
			return fmt.Errorf("%s references undeclared type %s", owner, name)
		}
		return nil
	}
	for _, t := range s.Types {
		for _, f := range t.Fields {
			if err := check(fmt.Sprintf("%s.%s", t.Name, f.Name), f.Type); err != nil {
				return err
			}
			for _, a := range f.Arguments {
				if err := check(fmt.Sprintf("%s.%s(%s:)", t.Name, f.Name, a.Name), a.Type); err != nil {
					return err
				}
			}
		}
		for _, iv := range t.InputFields {
			if err := check(fmt.Sprintf("%s.%s", t.Name, iv.Name), iv.Type); err != nil {
				return err
			}
		}
		for _, member := range t.PossibleTypes {
			if s.Types[member] == nil {
				return fmt.Errorf("%s lists undeclared member type %s", t.Name, member)
			}
		}
		for _, iface := range t.Interfaces {
			if s.Types[iface] == nil {
				return fmt.Errorf("%s implements undeclared interface %s", t.Name, iface)
			}
		}
	}
	return nil
}

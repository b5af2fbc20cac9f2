// Copyright © 2024 The cstlint authors

package syntax

// Kind tags a node with the grammar production it represents.
type Kind string

// Structural kinds.
const (
	KindToken   Kind = "token"
	KindList    Kind = "list"
	KindMissing Kind = "missing"
)

// Production kinds.
const (
	KindScript                       Kind = "script"
	KindEndOfFile                    Kind = "end_of_file"
	KindMarkupSection                Kind = "markup_section"
	KindMarkupSuffix                 Kind = "markup_suffix"
	KindQualifiedNameExpression      Kind = "qualified_name_expression"
	KindSimpleTypeSpecifier          Kind = "simple_type_specifier"
	KindNullableTypeSpecifier        Kind = "nullable_type_specifier"
	KindGenericTypeSpecifier         Kind = "generic_type_specifier"
	KindTypeArguments                Kind = "type_arguments"
	KindXHPSimpleClassAttribute      Kind = "xhp_simple_class_attribute"
	KindXHPClassAttributeDeclaration Kind = "xhp_class_attribute_declaration"
	KindXHPClassAttribute            Kind = "xhp_class_attribute"
	KindLiteralExpression            Kind = "literal_expression"
	KindVariableExpression           Kind = "variable_expression"
	KindParenthesizedExpression      Kind = "parenthesized_expression"
	KindBinaryExpression             Kind = "binary_expression"
	KindPrefixUnaryExpression        Kind = "prefix_unary_expression"
	KindFunctionCallExpression       Kind = "function_call_expression"
	KindObjectCreationExpression     Kind = "object_creation_expression"
	KindListItem                     Kind = "list_item"
	KindExpressionStatement          Kind = "expression_statement"
	KindCompoundStatement            Kind = "compound_statement"
	KindEchoStatement                Kind = "echo_statement"
	KindReturnStatement              Kind = "return_statement"
	KindIfStatement                  Kind = "if_statement"
	KindElseifClause                 Kind = "elseif_clause"
	KindElseClause                   Kind = "else_clause"
	KindWhileStatement               Kind = "while_statement"
	KindFunctionDeclaration          Kind = "function_declaration"
	KindFunctionDeclarationHeader    Kind = "function_declaration_header"
	KindParameterDeclaration         Kind = "parameter_declaration"
	KindSimpleInitializer            Kind = "simple_initializer"
	KindNamespaceDeclaration         Kind = "namespace_declaration"
	KindNamespaceBody                Kind = "namespace_body"
	KindNamespaceEmptyBody           Kind = "namespace_empty_body"
	KindNamespaceUseDeclaration      Kind = "namespace_use_declaration"
	KindNamespaceUseClause           Kind = "namespace_use_clause"
	KindClassishDeclaration          Kind = "classish_declaration"
	KindClassishBody                 Kind = "classish_body"
	KindMethodishDeclaration         Kind = "methodish_declaration"
)

// Slot describes one named child position of a production.
type Slot struct {
	// Name is the child's name as exposed by Children and Child.
	Name string
	// Key is the parse result key the child is read from.
	Key string
	// Want lists the kinds Get accepts for this slot. Empty means any.
	Want []Kind
}

type schemaEntry struct {
	slots []Slot
	keys  []string
	index map[string]int
}

var schema = map[Kind]*schemaEntry{}

// production registers kind with its children in declaration order.
func production(kind Kind, slots ...Slot) {
	e := &schemaEntry{index: make(map[string]int, len(slots))}
	for i, s := range slots {
		if s.Key == "" {
			s.Key = string(kind) + "_" + s.Name
		}
		e.slots = append(e.slots, s)
		e.keys = append(e.keys, s.Key)
		e.index[s.Name] = i
	}
	schema[kind] = e
}

func slot(name string, want ...Kind) Slot {
	return Slot{Name: name, Want: want}
}

// keyed is a slot whose parse result key is not derived from the kind.
func keyed(name, key string, want ...Kind) Slot {
	return Slot{Name: name, Key: key, Want: want}
}

func init() {
	production(KindScript, slot("declarations", KindList))
	production(KindEndOfFile, slot("token", KindToken))
	production(KindMarkupSection,
		slot("prefix"), slot("text", KindToken), slot("suffix"), slot("expression"))
	production(KindMarkupSuffix,
		slot("less_than_question", KindToken), slot("name", KindToken))
	production(KindQualifiedNameExpression,
		keyed("expression", string(KindQualifiedNameExpression)))
	production(KindSimpleTypeSpecifier,
		keyed("specifier", string(KindSimpleTypeSpecifier)))
	production(KindNullableTypeSpecifier,
		slot("question", KindToken), slot("type"))
	production(KindGenericTypeSpecifier,
		slot("class_type", KindToken), slot("argument_list", KindTypeArguments))
	production(KindTypeArguments,
		slot("left_angle", KindToken), slot("types", KindList), slot("right_angle", KindToken))
	production(KindXHPSimpleClassAttribute,
		slot("type", KindSimpleTypeSpecifier))
	production(KindXHPClassAttributeDeclaration,
		slot("keyword", KindToken), slot("attributes", KindList), slot("semicolon", KindToken))
	production(KindXHPClassAttribute,
		slot("type"), slot("name", KindToken), slot("initializer", KindSimpleInitializer), slot("required"))
	production(KindLiteralExpression,
		keyed("expression", string(KindLiteralExpression)))
	production(KindVariableExpression,
		keyed("expression", string(KindVariableExpression), KindToken))
	production(KindParenthesizedExpression,
		slot("left_paren", KindToken), slot("expression"), slot("right_paren", KindToken))
	production(KindBinaryExpression,
		slot("left_operand"), slot("operator", KindToken), slot("right_operand"))
	production(KindPrefixUnaryExpression,
		slot("operator", KindToken), slot("operand"))
	production(KindFunctionCallExpression,
		slot("receiver"), slot("left_paren", KindToken), slot("argument_list", KindList), slot("right_paren", KindToken))
	production(KindObjectCreationExpression,
		slot("new_keyword", KindToken), slot("type"), slot("left_paren", KindToken),
		slot("argument_list", KindList), slot("right_paren", KindToken))
	production(KindListItem, slot("item"), slot("separator", KindToken))
	production(KindExpressionStatement,
		slot("expression"), slot("semicolon", KindToken))
	production(KindCompoundStatement,
		slot("left_brace", KindToken), slot("statements", KindList), slot("right_brace", KindToken))
	production(KindEchoStatement,
		slot("keyword", KindToken), slot("expressions", KindList), slot("semicolon", KindToken))
	production(KindReturnStatement,
		slot("keyword", KindToken), slot("expression"), slot("semicolon", KindToken))
	production(KindIfStatement,
		slot("keyword", KindToken), slot("left_paren", KindToken), slot("condition"),
		slot("right_paren", KindToken), slot("statement"),
		slot("elseif_clauses", KindList), slot("else_clause", KindElseClause))
	production(KindElseifClause,
		slot("keyword", KindToken), slot("left_paren", KindToken), slot("condition"),
		slot("right_paren", KindToken), slot("statement"))
	production(KindElseClause, slot("keyword", KindToken), slot("statement"))
	production(KindWhileStatement,
		slot("keyword", KindToken), slot("left_paren", KindToken), slot("condition"),
		slot("right_paren", KindToken), slot("body"))
	production(KindFunctionDeclaration,
		slot("attribute_spec"), slot("declaration_header", KindFunctionDeclarationHeader),
		slot("body", KindCompoundStatement))
	production(KindFunctionDeclarationHeader,
		slot("modifiers", KindList), slot("keyword", KindToken), slot("name", KindToken),
		slot("type_parameter_list"), slot("left_paren", KindToken),
		slot("parameter_list", KindList), slot("right_paren", KindToken),
		slot("colon", KindToken), slot("type"), slot("where_clause"))
	production(KindParameterDeclaration,
		slot("attribute"), slot("visibility", KindToken), slot("type"),
		slot("name"), slot("default_value", KindSimpleInitializer))
	production(KindSimpleInitializer, slot("equal", KindToken), slot("value"))
	production(KindNamespaceDeclaration,
		slot("keyword", KindToken), slot("name"), slot("body", KindNamespaceBody, KindNamespaceEmptyBody))
	production(KindNamespaceBody,
		slot("left_brace", KindToken), slot("declarations", KindList), slot("right_brace", KindToken))
	production(KindNamespaceEmptyBody, slot("semicolon", KindToken))
	production(KindNamespaceUseDeclaration,
		slot("keyword", KindToken), slot("kind", KindToken), slot("clauses", KindList), slot("semicolon", KindToken))
	production(KindNamespaceUseClause,
		slot("clause_kind", KindToken), slot("name"), slot("as", KindToken), slot("alias", KindToken))
	production(KindClassishDeclaration,
		slot("attribute"), slot("modifiers", KindList), slot("keyword", KindToken),
		slot("name", KindToken), slot("type_parameters"), slot("extends_keyword", KindToken),
		slot("extends_list", KindList), slot("implements_keyword", KindToken),
		slot("implements_list", KindList), slot("body", KindClassishBody))
	production(KindClassishBody,
		slot("left_brace", KindToken), slot("elements", KindList), slot("right_brace", KindToken))
	production(KindMethodishDeclaration,
		slot("attribute"), slot("modifiers", KindList),
		slot("function_decl_header", KindFunctionDeclarationHeader),
		slot("function_body", KindCompoundStatement), slot("semicolon", KindToken))
}

// Slots returns the child slots of kind in declaration order. The second
// result is false for structural kinds and unknown productions.
func Slots(kind Kind) ([]Slot, bool) {
	e, ok := schema[kind]
	if !ok {
		return nil, false
	}
	return e.slots, true
}

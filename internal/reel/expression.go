package reel

import (
	"fmt"
	"strings"
)

// Expression is the pose the character takes for a scene.
type Expression string

const (
	ExpressionNormal     Expression = "normal"
	ExpressionSurprised  Expression = "surprised"
	ExpressionIdea       Expression = "idea"
	ExpressionFrustrated Expression = "frustrated"
	ExpressionDizzy      Expression = "dizzy"
	ExpressionTired      Expression = "tired"
	ExpressionCry        Expression = "cry"
	ExpressionBow        Expression = "bow"
)

// Expressions lists every pose in display order.
var Expressions = []Expression{
	ExpressionNormal,
	ExpressionSurprised,
	ExpressionIdea,
	ExpressionFrustrated,
	ExpressionDizzy,
	ExpressionTired,
	ExpressionCry,
	ExpressionBow,
}

var expressionLabels = map[Expression]string{
	ExpressionNormal:     "通常",
	ExpressionSurprised:  "驚き",
	ExpressionIdea:       "ひらめき",
	ExpressionFrustrated: "落胆",
	ExpressionDizzy:      "困惑",
	ExpressionTired:      "疲れ",
	ExpressionCry:        "泣き",
	ExpressionBow:        "お辞儀",
}

// ParseExpression validates a pose name. Empty input yields ExpressionNormal.
func ParseExpression(value string) (Expression, error) {
	v := Expression(strings.ToLower(strings.TrimSpace(value)))
	if v == "" {
		return ExpressionNormal, nil
	}
	if _, ok := expressionLabels[v]; !ok {
		return "", fmt.Errorf("unknown expression %q", value)
	}
	return v, nil
}

// Valid reports whether e is one of the known poses.
func (e Expression) Valid() bool {
	_, ok := expressionLabels[e]
	return ok
}

// Label returns the display label used in exported notes.
func (e Expression) Label() string {
	if label, ok := expressionLabels[e]; ok {
		return label
	}
	return string(e)
}

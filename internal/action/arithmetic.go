package action

import (
	"context"
	"fmt"
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/cadre-oss/sherpa/internal/provider"
)

const arithmeticSystem = `Translate the question into a single arithmetic expression.
Use only numbers, parentheses and the operators + - * / %.
Reply with the expression and nothing else.`

// Arithmetic answers numeric questions. The model only writes the expression;
// evaluation is exact and local.
type Arithmetic struct {
	Base
	model model
}

// NewArithmetic creates the arithmetic action.
func NewArithmetic(p provider.Provider, maxTokens int) *Arithmetic {
	return &Arithmetic{
		Base: Base{
			ActionName:        "arithmetic",
			ActionDescription: "Compute the numeric answer to a question that needs arithmetic.",
			ActionArgs: []Argument{
				{Name: "question", Description: "the question to compute"},
			},
		},
		model: model{provider: p, maxTokens: maxTokens},
	}
}

func (a *Arithmetic) Execute(ctx context.Context, args map[string]string) (string, error) {
	question, err := Require(a, args, "question")
	if err != nil {
		return "", err
	}

	expr, err := a.model.ask(ctx, arithmeticSystem, question)
	if err != nil {
		return "", fmt.Errorf("arithmetic: %w", err)
	}
	expr = cleanExpression(expr)

	value, err := Evaluate(expr)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %s", expr, value), nil
}

func cleanExpression(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "`")
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "="))
	return strings.ReplaceAll(s, ",", "")
}

// Evaluate computes an arithmetic expression exactly and formats the result.
// Integers stay integers; non-integral quotients are rendered as decimals.
func Evaluate(expr string) (string, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return "", fmt.Errorf("invalid expression %q: %w", expr, err)
	}

	v, err := eval(node)
	if err != nil {
		return "", fmt.Errorf("evaluate %q: %w", expr, err)
	}
	return format(v), nil
}

func eval(n ast.Expr) (constant.Value, error) {
	switch n := n.(type) {
	case *ast.BasicLit:
		if n.Kind != token.INT && n.Kind != token.FLOAT {
			return nil, fmt.Errorf("unsupported literal %s", n.Value)
		}
		v := constant.MakeFromLiteral(n.Value, n.Kind, 0)
		if v.Kind() == constant.Unknown {
			return nil, fmt.Errorf("malformed number %s", n.Value)
		}
		return v, nil

	case *ast.ParenExpr:
		return eval(n.X)

	case *ast.UnaryExpr:
		if n.Op != token.ADD && n.Op != token.SUB {
			return nil, fmt.Errorf("unsupported operator %s", n.Op)
		}
		x, err := eval(n.X)
		if err != nil {
			return nil, err
		}
		return constant.UnaryOp(n.Op, x, 0), nil

	case *ast.BinaryExpr:
		x, err := eval(n.X)
		if err != nil {
			return nil, err
		}
		y, err := eval(n.Y)
		if err != nil {
			return nil, err
		}

		switch n.Op {
		case token.ADD, token.SUB, token.MUL:
			return constant.BinaryOp(x, n.Op, y), nil
		case token.QUO:
			if constant.Sign(y) == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return constant.BinaryOp(x, token.QUO, y), nil
		case token.REM:
			if x.Kind() != constant.Int || y.Kind() != constant.Int {
				return nil, fmt.Errorf("%% needs integer operands")
			}
			if constant.Sign(y) == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return constant.BinaryOp(x, token.REM, y), nil
		default:
			return nil, fmt.Errorf("unsupported operator %s", n.Op)
		}

	default:
		return nil, fmt.Errorf("unsupported expression %T", n)
	}
}

func format(v constant.Value) string {
	if i := constant.ToInt(v); i.Kind() == constant.Int {
		return i.ExactString()
	}
	f, _ := constant.Float64Val(v)
	return strconv.FormatFloat(f, 'f', -1, 64)
}

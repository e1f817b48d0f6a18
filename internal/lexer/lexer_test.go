package lexer

import "testing"

func TestOperatorsAndOperands(t *testing.T) {
	input := "ab+c-d/e*f|g&h^ 1"

	tests := []struct {
		expectedType TokenType
		expectedChar byte
	}{
		{TokenOperand, 'a'},
		{TokenOperand, 'b'},
		{TokenPlus, '+'},
		{TokenOperand, 'c'},
		{TokenMinus, '-'},
		{TokenOperand, 'd'},
		{TokenDiv, '/'},
		{TokenOperand, 'e'},
		{TokenMul, '*'},
		{TokenOperand, 'f'},
		{TokenBitOr, '|'},
		{TokenOperand, 'g'},
		{TokenBitAnd, '&'},
		{TokenOperand, 'h'},
		{TokenBitXor, '^'},
		{TokenOperand, ' '},
		{TokenOperand, '1'},
		{TokenEOF, 0},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Char != tt.expectedChar {
			t.Fatalf("tests[%d] - char wrong. expected=%q, got=%q",
				i, tt.expectedChar, tok.Char)
		}

		if tok.Pos.Offset != i {
			t.Fatalf("tests[%d] - offset wrong. expected=%d, got=%d", i, i, tok.Pos.Offset)
		}
	}
}

func TestTokenize(t *testing.T) {
	toks := Tokenize("abc+*")
	if len(toks) != 5 {
		t.Fatalf("expected 5 tokens, got %d", len(toks))
	}

	operands := 0
	for _, tok := range toks {
		if !tok.IsOperator() {
			operands++
		}
	}
	if operands != 3 {
		t.Fatalf("expected 3 operands, got %d", operands)
	}

	if len(Tokenize("")) != 0 {
		t.Fatalf("empty input must produce no tokens")
	}
}

func TestIsOperator(t *testing.T) {
	for _, c := range []byte("+-/*|&^") {
		if !IsOperator(c) {
			t.Fatalf("%q should be an operator", c)
		}
	}
	for _, c := range []byte("a%()~ 9") {
		if IsOperator(c) {
			t.Fatalf("%q should be an operand", c)
		}
	}
}

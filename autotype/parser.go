package autotype

import (
	"strings"
)

// ParseSequence compiles a sequence template into actions.
//
// Literal characters are typed as-is. "{TOKEN}" names a key, a command or a
// credential placeholder and "{TOKEN N}" repeats it. "{DELAY=N}" paces the
// whole sequence: a delay of N ms is inserted between every two actions.
// Braces must balance; there is no nesting.
func ParseSequence(sequence string, resolver PlaceholderResolver) (Sequence, error) {
	var (
		actions Sequence
		token   strings.Builder
		inToken bool
		delay   int
		offset  int
	)

	for _, ch := range sequence {
		if inToken {
			switch ch {
			case '{':
				return nil, &SyntaxError{Sequence: sequence, Offset: offset, Reason: "nested '{'"}
			case '}':
				result := resolveTemplate(token.String(), resolver)
				actions = append(actions, result.actions...)
				if result.delaySet {
					delay = result.delay
				}
				token.Reset()
				inToken = false
			default:
				token.WriteRune(ch)
			}
		} else {
			switch ch {
			case '{':
				inToken = true
			case '}':
				return nil, &SyntaxError{Sequence: sequence, Offset: offset, Reason: "unexpected '}'"}
			default:
				actions = append(actions, CharAction{Char: ch})
			}
		}
		offset++
	}

	if inToken {
		return nil, &SyntaxError{Sequence: sequence, Offset: offset, Reason: "unterminated '{'"}
	}

	if delay > 0 {
		actions = interleaveDelay(actions, delay)
	}

	return actions, nil
}

// interleaveDelay puts a DelayAction between every adjacent pair of actions,
// never before the first or after the last.
func interleaveDelay(actions Sequence, delay int) Sequence {
	if len(actions) < 2 {
		return actions
	}

	paced := make(Sequence, 0, 2*len(actions)-1)
	for i, a := range actions {
		if i > 0 {
			paced = append(paced, DelayAction{Milliseconds: delay})
		}
		paced = append(paced, a)
	}
	return paced
}

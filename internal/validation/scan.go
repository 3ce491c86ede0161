package validation

type scanStats struct {
	open, close  int
	begins, ends int
}

// scan counts structural tokens the way TeX reads them: a backslash starts a
// control word or control symbol, and an unescaped % comments out the rest
// of the line. Escaped braces such as \{ are therefore not counted.
func scan(doc string) scanStats {
	var s scanStats
	for i := 0; i < len(doc); i++ {
		switch doc[i] {
		case '\\':
			j := i + 1
			for j < len(doc) && isLetter(doc[j]) {
				j++
			}
			if j == i+1 {
				// control symbol: skip the escaped character
				i++
				continue
			}
			if j < len(doc) && doc[j] == '{' {
				switch doc[i+1 : j] {
				case "begin":
					s.begins++
				case "end":
					s.ends++
				}
			}
			i = j - 1
		case '%':
			for i < len(doc) && doc[i] != '\n' {
				i++
			}
		case '{':
			s.open++
		case '}':
			s.close++
		}
	}
	return s
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

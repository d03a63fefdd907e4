package expect

import (
	"encoding/base64"
	"encoding/xml"
	"errors"
	"io"
	"net/netip"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	hexPattern   = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	rgbPattern   = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)
	rgbaPattern  = regexp.MustCompile(`^rgba\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d*\.?\d+)\s*\)$`)
	hslPattern   = regexp.MustCompile(`^hsl\(\s*(\d{1,3})\s*,\s*(\d{1,3})%\s*,\s*(\d{1,3})%\s*\)$`)
	hslaPattern  = regexp.MustCompile(`^hsla\(\s*(\d{1,3})\s*,\s*(\d{1,3})%\s*,\s*(\d{1,3})%\s*,\s*(\d*\.?\d+)\s*\)$`)
	hsvPattern   = regexp.MustCompile(`^hsv\(\s*(\d{1,3})\s*,\s*(\d{1,3})%\s*,\s*(\d{1,3})%\s*\)$`)
	cmykPattern  = regexp.MustCompile(`^cmyk\(\s*(\d{1,3})%\s*,\s*(\d{1,3})%\s*,\s*(\d{1,3})%\s*,\s*(\d{1,3})%\s*\)$`)
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC1123,
	time.RFC1123Z,
}

// formats holds the string validators shared by the type, validator and
// color matchers.
var formats = map[string]func(string) bool{
	"ipv4": func(s string) bool {
		addr, err := netip.ParseAddr(s)
		return err == nil && addr.Is4()
	},
	"ipv6": func(s string) bool {
		addr, err := netip.ParseAddr(s)
		return err == nil && addr.Is6()
	},
	"email": emailPattern.MatchString,
	"url": func(s string) bool {
		u, err := url.Parse(s)
		return err == nil && u.Scheme != "" && u.Host != ""
	},
	"base64": func(s string) bool {
		if s == "" || len(s)%4 != 0 {
			return false
		}
		_, err := base64.StdEncoding.DecodeString(s)
		return err == nil
	},
	"date":     func(s string) bool { return parsesWith(s, dateLayouts) },
	"datetime": func(s string) bool { return parsesWith(s, dateTimeLayouts) },
	"xml":      validXML,
	"hex":      hexPattern.MatchString,
	"rgb": func(s string) bool {
		return matchRanges(rgbPattern, s, 255, 255, 255)
	},
	"rgba": func(s string) bool {
		return matchRanges(rgbaPattern, s, 255, 255, 255, 1)
	},
	"hsl": func(s string) bool {
		return matchRanges(hslPattern, s, 360, 100, 100)
	},
	"hsla": func(s string) bool {
		return matchRanges(hslaPattern, s, 360, 100, 100, 1)
	},
	"hsv": func(s string) bool {
		return matchRanges(hsvPattern, s, 360, 100, 100)
	},
	"cmyk": func(s string) bool {
		return matchRanges(cmykPattern, s, 100, 100, 100, 100)
	},
}

// testValue reports whether v is a string in the named format.
func testValue(v any, kind string) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	fn, ok := formats[kind]
	return ok && fn(s)
}

func parsesWith(s string, layouts []string) bool {
	for _, layout := range layouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// matchRanges matches s against re and checks every captured number against
// the corresponding upper bound.
func matchRanges(re *regexp.Regexp, s string, max ...float64) bool {
	m := re.FindStringSubmatch(s)
	if m == nil || len(m)-1 != len(max) {
		return false
	}
	for i, limit := range max {
		n, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil || n < 0 || n > limit {
			return false
		}
	}
	return true
}

func validXML(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	dec := xml.NewDecoder(strings.NewReader(s))
	elements := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return elements > 0
		}
		if err != nil {
			return false
		}
		if _, ok := tok.(xml.StartElement); ok {
			elements++
		}
	}
}

var patternCache, _ = lru.New[string, *regexp.Regexp](256)

// compilePattern compiles a toMatch pattern. Patterns written as /re/ or
// /re/i use regexp syntax with optional flags; anything else is tried as a
// regexp first and matched as a plain substring when it does not compile.
func compilePattern(pattern string) (*regexp.Regexp, bool) {
	if re, ok := patternCache.Get(pattern); ok {
		return re, true
	}
	expr := pattern
	if len(pattern) > 1 && pattern[0] == '/' {
		if end := strings.LastIndex(pattern, "/"); end > 0 {
			expr = pattern[1:end]
			if flags := pattern[end+1:]; flags != "" {
				var keep strings.Builder
				for _, f := range flags {
					if strings.ContainsRune("ims", f) {
						keep.WriteRune(f)
					}
				}
				if keep.Len() > 0 {
					expr = "(?" + keep.String() + ")" + expr
				}
			}
		}
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, false
	}
	patternCache.Add(pattern, re)
	return re, true
}

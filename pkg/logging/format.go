package logging

import (
	"fmt"
	"strings"
)

// Format substitutes {name}-style placeholders in template using args as a
// flat key/value list (args[0] is a placeholder name, args[1] its value,
// args[2] the next name, and so on). A placeholder with no corresponding
// argument pair is left untouched.
//
// This is a small scan-and-substitute routine rather than text/template: the
// placeholder syntax here is a strict, non-nested subset, and pulling in a
// general template engine for it would be ceremony with no payoff.
func Format(template string, args ...interface{}) string {
	if len(args) == 0 {
		return template
	}

	replacer := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		name, ok := args[i].(string)
		if !ok {
			continue
		}
		replacer = append(replacer, "{"+name+"}", toString(args[i+1]))
	}
	if len(replacer) == 0 {
		return template
	}
	return strings.NewReplacer(replacer...).Replace(template)
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

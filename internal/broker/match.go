package broker

import "strings"

// MatchTopic reports whether topic matches an MQTT-style filter, where "+"
// matches exactly one level and a trailing "#" matches any remaining levels.
// Topics starting with "$" are not matched by filters starting with a wildcard.
func MatchTopic(filter, topic string) bool {
	if filter == topic {
		return true
	}
	if filter == "" || topic == "" {
		return false
	}
	if strings.HasPrefix(topic, "$") && (strings.HasPrefix(filter, "+") || strings.HasPrefix(filter, "#")) {
		return false
	}
	fl := strings.Split(filter, "/")
	tl := strings.Split(topic, "/")
	for i, level := range fl {
		if level == "#" {
			return i == len(fl)-1
		}
		if i >= len(tl) {
			return false
		}
		if level != "+" && level != tl[i] {
			return false
		}
	}
	return len(fl) == len(tl)
}

// MatchFunc reports whether topic is covered by filter.
type MatchFunc func(filter, topic string) bool

// MatchSubject reports whether subject matches a NATS filter, where "*"
// matches exactly one token and a trailing ">" matches one or more tokens.
func MatchSubject(filter, subject string) bool {
	if filter == subject {
		return true
	}
	if filter == "" || subject == "" {
		return false
	}
	fl := strings.Split(filter, ".")
	sl := strings.Split(subject, ".")
	for i, token := range fl {
		if token == ">" {
			return i == len(fl)-1 && len(sl) > i
		}
		if i >= len(sl) {
			return false
		}
		if token != "*" && token != sl[i] {
			return false
		}
	}
	return len(fl) == len(sl)
}

// Matcher returns the wildcard rules used by a broker kind.
func Matcher(kind string) MatchFunc {
	if kind == KindNATS {
		return MatchSubject
	}
	return MatchTopic
}

package util

import (
	"os"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	folder = cases.Fold()

	legalMatch = regexp.MustCompile("[[:alnum:] _.=,-]") // dash must be LAST! doh
)

// NormalizeTag maps spellings of the same tag onto one key: NFC composed,
// case folded, surrounding space and leading '#' removed
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimLeft(tag, "#＃")
	return folder.String(norm.NFC.String(tag))
}

// CleanFilename strips accents and anything not safe in a file name
func CleanFilename(input string) string {
	normalized, _, _ := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), input)

	var output strings.Builder
	for _, chr := range normalized {
		if legalMatch.MatchString(string(chr)) {
			output.WriteRune(chr)
		}
	}
	return output.String()
}

func Default(values ...string) string {
	for _, value := range values {
		if len(value) != 0 {
			return value
		}
	}
	return ""
}

func PathExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

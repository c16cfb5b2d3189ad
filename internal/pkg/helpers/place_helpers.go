package helpers

import (
	"regexp"
	"strings"
)

var (
	placeSeparator   = regexp.MustCompile(`\s*[,、/;]\s*`)
	placeRoomWord    = regexp.MustCompile(`(?i)강의실`)
	placeParenthesis = regexp.MustCompile(`\s*[\(（][^\)）]*[\)）]`)
	placeAfterRoom   = regexp.MustCompile(`호.*`)
)

// unassignedPlace is what the lecture API writes when no room is set.
const unassignedPlace = "미지정"

// NormalizePlaces splits a raw place field into display segments: the
// word 강의실 and parenthesised notes are dropped and anything after the
// room number suffix 호 is cut.
func NormalizePlaces(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var places []string
	for _, seg := range placeSeparator.Split(raw, -1) {
		seg = placeRoomWord.ReplaceAllString(seg, "")
		seg = placeParenthesis.ReplaceAllString(seg, "")
		seg = placeAfterRoom.ReplaceAllString(seg, "호")
		if seg = strings.TrimSpace(seg); seg != "" {
			places = append(places, seg)
		}
	}
	return places
}

// PlaceText joins normalised places for a one-line label. A lone 미지정
// renders as empty.
func PlaceText(places []string) string {
	text := strings.Join(places, ", ")
	if text == unassignedPlace {
		return ""
	}
	return text
}

package matching

import (
	"strings"

	"github.com/clinio/carematch-backend/internal/domain/entities"
)

// Keyword lists are matched against normalized (lowercased, de-accented)
// text, so entries are written without diacritics. Multi-word entries are
// matched by whole-phrase containment; single words by word-boundary prefix
// to tolerate inflection (e.g. "meditat" matches "meditation" and
// "méditative"). Requests arrive in French or English.
var holisticKeywords = map[entities.HolisticCategory][]string{
	entities.HolisticCategoryBody: {
		"massage", "massotherapie", "osteopath", "acupunct", "yoga",
		"respiration", "breathing", "relaxation", "posture", "tension",
		"douleur chronique", "chronic pain", "somatique", "somatic",
	},
	entities.HolisticCategoryEnergy: {
		"energie", "energy", "reiki", "magnetisme", "chakra",
		"vitalite", "vitality", "fatigue", "epuisement", "burnout",
		"recharge", "equilibre energetique",
	},
	entities.HolisticCategoryLifestyle: {
		"sommeil", "sleep", "alimentation", "nutrition", "habitude",
		"habit", "exercice", "exercise", "routine", "hygiene de vie",
		"work-life balance", "equilibre de vie", "gestion du stress",
		"stress management",
	},
	entities.HolisticCategoryGlobal: {
		"holistique", "holistic", "bien-etre", "bien etre", "wellbeing",
		"well-being", "wellness", "approche globale", "whole person",
		"corps et esprit", "mind and body", "mindfulness", "pleine conscience",
		"meditat", "naturopath", "croissance personnelle", "personal growth",
	},
}

// Base score per category, global intent weighted highest.
var holisticCategoryWeights = map[entities.HolisticCategory]float64{
	entities.HolisticCategoryBody:      0.20,
	entities.HolisticCategoryEnergy:    0.25,
	entities.HolisticCategoryLifestyle: 0.30,
	entities.HolisticCategoryGlobal:    0.35,
}

// crisisKeywords always set the clinical override, regardless of how much
// wellness language surrounds them.
var crisisKeywords = []string{
	"suicide", "suicidaire", "suicidal", "idees noires",
	"automutilation", "self-harm", "me faire du mal", "hurt myself",
	"violence", "violent", "abus", "abuse", "maltraitance",
	"detresse", "distress", "crise", "crisis", "urgence", "emergency",
	"panique", "panic", "dissociation", "dissocie",
	"psychose", "psychosis", "hallucination", "delire", "delusion",
	"danger", "hopital", "hospitalisation",
}

var textNormalizer = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i",
	"ô", "o", "ö", "o",
	"ù", "u", "û", "u", "ü", "u",
	"ç", "c", "œ", "oe",
	"’", "'",
)

// normalizeText case-folds, strips French diacritics and collapses
// whitespace so keyword matching is accent- and spacing-insensitive.
func normalizeText(text string) string {
	lowered := strings.ToLower(text)
	stripped := textNormalizer.Replace(lowered)
	return strings.Join(strings.Fields(stripped), " ")
}

// matchKeyword reports whether the normalized text contains the keyword:
// whole-phrase containment for multi-word entries, word-boundary prefix for
// single words.
func matchKeyword(normalized string, words []string, keyword string) bool {
	if strings.Contains(keyword, " ") || strings.Contains(keyword, "-") {
		return strings.Contains(normalized, keyword)
	}
	for _, w := range words {
		if strings.HasPrefix(w, keyword) {
			return true
		}
	}
	return false
}

// ClassifyHolisticIntent scores free text for holistic-wellness intent and
// scans for clinical-crisis language. Pure function, no I/O.
//
// The score sums per-category base weights, each slightly boosted by match
// count, plus bonuses when two or more categories fire, clamped to 1.0.
// RecommendAlternative requires score >= 0.5 and no clinical override:
// crisis language always suppresses the wellness-provider preference.
func ClassifyHolisticIntent(text string) entities.HolisticSignal {
	signal := entities.HolisticSignal{PrimaryCategory: entities.HolisticCategoryNone}

	normalized := normalizeText(text)
	if normalized == "" {
		return signal
	}
	words := strings.Fields(strings.Map(func(r rune) rune {
		// Keep hyphens so "bien-etre" stays one token for prefix matching.
		switch r {
		case ',', '.', ';', ':', '!', '?', '(', ')', '"':
			return ' '
		}
		return r
	}, normalized))

	score := 0.0
	categoriesMatched := 0
	bestWeight := 0.0

	for _, category := range []entities.HolisticCategory{
		entities.HolisticCategoryBody,
		entities.HolisticCategoryEnergy,
		entities.HolisticCategoryLifestyle,
		entities.HolisticCategoryGlobal,
	} {
		matches := 0
		for _, kw := range holisticKeywords[category] {
			if matchKeyword(normalized, words, kw) {
				matches++
				signal.MatchedKeywords = append(signal.MatchedKeywords, kw)
			}
		}
		if matches == 0 {
			continue
		}
		categoriesMatched++

		weight := holisticCategoryWeights[category]
		// Extra matches in the same category add a small capped boost.
		extra := matches - 1
		if extra > 2 {
			extra = 2
		}
		score += weight + float64(extra)*0.05

		if weight > bestWeight {
			bestWeight = weight
			signal.PrimaryCategory = category
		}
	}

	if categoriesMatched >= 2 {
		score += 0.10
	}
	if categoriesMatched >= 3 {
		score += 0.10
	}
	if score > 1.0 {
		score = 1.0
	}
	signal.Score = score

	for _, kw := range crisisKeywords {
		if matchKeyword(normalized, words, kw) {
			signal.ClinicalOverride = true
			signal.CrisisKeywords = append(signal.CrisisKeywords, kw)
		}
	}

	signal.RecommendAlternative = signal.Score >= 0.5 && !signal.ClinicalOverride
	return signal
}

package present

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ErrMissingTranslation is reported when a key has no entry for a locale.
var ErrMissingTranslation = errors.New("present: missing translation")

// Translator resolves message keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides what to show when Translate fails.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

func missingTranslationDefault(_ string, key string, _ []any, _ error) string {
	return key
}

// Message keys.
const (
	KeyLabelRent     = "label.rent"
	KeyLabelBuy      = "label.buy"
	KeyLabelEstimate = "label.estimate"
	KeyDismiss       = "action.dismiss"
	keyFailurePrefix = "failure."
)

// FailureKey returns the message key of a failure kind.
func FailureKey(kind string) string {
	return keyFailurePrefix + kind
}

// Catalog is an in-memory Translator keyed by language. Lookups match the
// requested locale to the closest language the catalog carries.
type Catalog struct {
	tags     []language.Tag
	messages []map[string]string
	matcher  language.Matcher
}

// NewCatalog builds a Catalog. The first language is the fallback.
func NewCatalog(entries map[language.Tag]map[string]string, fallback language.Tag) *Catalog {
	c := &Catalog{}
	c.add(fallback, entries[fallback])
	for tag, msgs := range entries {
		if tag == fallback {
			continue
		}
		c.add(tag, msgs)
	}
	c.matcher = language.NewMatcher(c.tags)
	return c
}

func (c *Catalog) add(tag language.Tag, msgs map[string]string) {
	copied := make(map[string]string, len(msgs))
	for k, v := range msgs {
		copied[k] = v
	}
	c.tags = append(c.tags, tag)
	c.messages = append(c.messages, copied)
}

// Tag returns the catalog language chosen for locale.
func (c *Catalog) Tag(locale string) language.Tag {
	return c.tags[c.index(locale)]
}

func (c *Catalog) index(locale string) int {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return 0
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return 0
	}
	return idx
}

// Translate implements Translator. Args are applied with fmt.Sprintf when
// present.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	idx := c.index(locale)
	msg, ok := c.messages[idx][key]
	if !ok && idx != 0 {
		msg, ok = c.messages[0][key]
	}
	if !ok {
		return "", fmt.Errorf("%w: %s (%s)", ErrMissingTranslation, key, locale)
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...), nil
	}
	return msg, nil
}

var english = map[string]string{
	KeyLabelRent:     "Estimated Monthly Rent",
	KeyLabelBuy:      "Estimated Market Value",
	KeyLabelEstimate: "Estimated Price",
	KeyDismiss:       "Dismiss",

	FailureKey("network_error"):          "We could not reach the valuation service. Check your connection and try again.",
	FailureKey("server_error"):           "The valuation service could not price this property.",
	FailureKey("malformed_response"):     "The valuation service sent an answer we could not read.",
	FailureKey("timeout"):                "The valuation service took too long to answer. Please try again.",
	FailureKey("submission_in_progress"): "A valuation is already running for this form.",
	FailureKey("canceled"):               "The valuation was canceled.",
	FailureKey("unknown"):                "The valuation failed.",

	"analysis.total":    "Total listings",
	"analysis.rent":     "Average rent",
	"analysis.buy":      "Average sale price",
	"analysis.category": "Property types",
}

var french = map[string]string{
	KeyLabelRent:     "Loyer mensuel estimé",
	KeyLabelBuy:      "Valeur marchande estimée",
	KeyLabelEstimate: "Prix estimé",
	KeyDismiss:       "Fermer",

	FailureKey("network_error"):          "Impossible de joindre le service d'estimation. Vérifiez votre connexion et réessayez.",
	FailureKey("server_error"):           "Le service d'estimation n'a pas pu évaluer ce bien.",
	FailureKey("malformed_response"):     "La réponse du service d'estimation est illisible.",
	FailureKey("timeout"):                "Le service d'estimation a mis trop de temps à répondre. Réessayez.",
	FailureKey("submission_in_progress"): "Une estimation est déjà en cours pour ce formulaire.",
	FailureKey("canceled"):               "L'estimation a été annulée.",
	FailureKey("unknown"):                "L'estimation a échoué.",

	"analysis.total":    "Nombre d'annonces",
	"analysis.rent":     "Loyer moyen",
	"analysis.buy":      "Prix de vente moyen",
	"analysis.category": "Types de biens",
}

// DefaultCatalog returns the English and French messages, English first.
func DefaultCatalog() *Catalog {
	return NewCatalog(map[language.Tag]map[string]string{
		language.English: english,
		language.French:  french,
	}, language.English)
}

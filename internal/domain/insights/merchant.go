package insights

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// merchantPattern maps raw counterparty text to a display name.
type merchantPattern struct {
	pattern *regexp.Regexp
	name    string
}

// knownMerchants covers counterparties common in UPI and card statements.
var knownMerchants = []merchantPattern{
	{regexp.MustCompile(`(?i)AMAZON|AMZN`), "Amazon"},
	{regexp.MustCompile(`(?i)FLIPKART`), "Flipkart"},
	{regexp.MustCompile(`(?i)SWIGGY`), "Swiggy"},
	{regexp.MustCompile(`(?i)ZOMATO`), "Zomato"},
	{regexp.MustCompile(`(?i)UBER\s*EATS`), "Uber Eats"},
	{regexp.MustCompile(`(?i)\bUBER\b`), "Uber"},
	{regexp.MustCompile(`(?i)\bOLA\b|OLACABS`), "Ola"},
	{regexp.MustCompile(`(?i)BIG\s*BASKET|BIGBASKET`), "BigBasket"},
	{regexp.MustCompile(`(?i)BLINKIT`), "Blinkit"},
	{regexp.MustCompile(`(?i)ZEPTO`), "Zepto"},
	{regexp.MustCompile(`(?i)MYNTRA`), "Myntra"},
	{regexp.MustCompile(`(?i)NETFLIX`), "Netflix"},
	{regexp.MustCompile(`(?i)SPOTIFY`), "Spotify"},
	{regexp.MustCompile(`(?i)HOTSTAR`), "Disney+ Hotstar"},
	{regexp.MustCompile(`(?i)AIRTEL`), "Airtel"},
	{regexp.MustCompile(`(?i)\bJIO\b|RELIANCE\s*JIO`), "Jio"},
	{regexp.MustCompile(`(?i)IRCTC`), "IRCTC"},
	{regexp.MustCompile(`(?i)PAYTM`), "Paytm"},
	{regexp.MustCompile(`(?i)STARBUCKS`), "Starbucks"},
	{regexp.MustCompile(`(?i)MC\s*DONALDS|MCDONALD`), "McDonald's"},
}

var (
	refSuffix   = regexp.MustCompile(`\s+\d{4,}$`)
	dateSuffix  = regexp.MustCompile(`\s+\d{1,2}/\d{1,2}/?$`)
	multiSpaces = regexp.MustCompile(`\s+`)
)

var merchantPrefixes = []string{
	"UPI ", "UPI-", "NEFT ", "NEFT-", "IMPS ", "IMPS-", "RTGS ", "POS ", "ECOM ",
	"PURCHASE ", "PAYMENT ", "VISA ", "MASTERCARD ", "RUPAY ",
}

// merchantName cleans a raw counterparty into a display name.
func merchantName(raw string) string {
	cleaned := cleanMerchantName(raw)
	if cleaned == "" {
		return ""
	}
	upper := strings.ToUpper(cleaned)
	for _, p := range knownMerchants {
		if p.pattern.MatchString(upper) {
			return p.name
		}
	}
	return titleCase(cleaned)
}

func cleanMerchantName(raw string) string {
	result := strings.TrimSpace(raw)

	upper := strings.ToUpper(result)
	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(upper, prefix) {
			result = result[len(prefix):]
			break
		}
	}

	result = refSuffix.ReplaceAllString(result, "")
	result = dateSuffix.ReplaceAllString(result, "")
	result = multiSpaces.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
	}
	return strings.Join(words, " ")
}

// similarity scores two names from 0 to 100. Containment scores high so
// "Acme" and "Acme Corp" group together.
func similarity(a, b string) int {
	a, b = strings.ToUpper(a), strings.ToUpper(b)
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) {
		return 75 + 25*len(b)/len(a)
	}
	if strings.Contains(b, a) {
		return 75 + 25*len(a)/len(b)
	}

	maxLen := max(len(a), len(b))
	return 100 * (maxLen - fuzzy.LevenshteinDistance(a, b)) / maxLen
}

// mergeThreshold is the similarity at which two merchants are treated as one.
const mergeThreshold = 80

type merchantTotal struct {
	name   string
	amount float64
}

// groupMerchants folds spellings of the same merchant together. The first
// spelling seen names the group.
func groupMerchants(spend []merchantTotal) []merchantTotal {
	var groups []merchantTotal
	for _, m := range spend {
		merged := false
		for i := range groups {
			if similarity(groups[i].name, m.name) >= mergeThreshold {
				groups[i].amount += m.amount
				merged = true
				break
			}
		}
		if !merged {
			groups = append(groups, m)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].amount > groups[j].amount
	})
	return groups
}

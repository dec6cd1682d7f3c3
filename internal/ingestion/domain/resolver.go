package ingestion

import (
	"regexp"
	"strings"
)

// headerRule matches a normalized column label. A label matches when it
// contains every substring in all, at least one substring in any (when any is
// non-empty), and none of the substrings in none.
type headerRule struct {
	field FieldID
	all   []string
	any   []string
	none  []string
}

// headerRules is the ordered rule set. Order is load-bearing: variant and
// exclusion-sensitive rules sit above the broader rules of the same family so
// that near-duplicate labels never fall through to the base field.
var headerRules = []headerRule{
	{field: FieldDate, any: []string{"дата", "date"}},

	// The "не фд" / "not fd" variant must never reach the base count field.
	{field: FieldFirstDepositCountAlt, any: []string{"не фд", "нефд", "non fd", "not fd"}},
	{field: FieldFirstDepositCount, any: []string{"кол-во фд", "колво фд", "количество фд", "fd count", "кол-во пд"}},
	{field: FieldFirstDepositSumLocal, any: []string{"сумма фд", "сумма пд", "fd sum", "фд сумма"}},

	{field: FieldRepeatDepositSumSettled, all: []string{"повтор"}, any: []string{"usdt", "юсдт"}},
	{field: FieldRepeatDepositSumLocal, any: []string{"повтор", "redep", "рд сумма"}},

	{field: FieldSettlementRevenueSettled, all: []string{"касса"}, any: []string{"usdt", "юсдт"}, none: []string{"комисс"}},
	{field: FieldSettlementRevenueLocal, any: []string{"касса", "settlement"}, none: []string{"комисс"}},
	{field: FieldOwnRevenueSettled, all: []string{"приход"}, any: []string{"usdt", "юсдт"}},
	{field: FieldOwnRevenueLocal, any: []string{"приход", "own revenue"}},

	{field: FieldSpendFacebook, any: []string{"facebook", "фейсбук", "фб"}},
	{field: FieldSpendGoogle, any: []string{"google", "гугл"}},
	{field: FieldSpendTiktok, any: []string{"tiktok", "тикток", "тт"}},

	{field: FieldTrackerCost, any: []string{"keitaro", "кейтаро", "трекер"}},
	// "Общие расходы" carries the exclusion marker and must resolve to nothing,
	// not to the additional-expense field.
	{field: FieldExtraCost, any: []string{"доп расход", "доп. расход", "допрасход"}, none: []string{"общ"}},

	{field: FieldAgencyFee, any: []string{"агентск", "agency"}},
	{field: FieldCommissionSettlement, any: []string{"комисс", "commission"}},
	{field: FieldTotalPayroll, any: []string{"зарплат", "payroll", "фот"}},
	{field: FieldExpensesExcludingSpend, all: []string{"расход", "без спенд"}},
	{field: FieldTotalExpenses, any: []string{"итого расход", "всего расход", "total expense"}},
	{field: FieldNetProfit, any: []string{"прибыль", "profit"}},
	{field: FieldROI, any: []string{"roi", "рои"}},
	{field: FieldTotalSpend, any: []string{"спенд", "spend"}},
}

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeLabel folds a raw header label for rule matching: trimmed,
// lowercased, inner whitespace collapsed to single spaces, ё folded to е.
func NormalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.ReplaceAll(label, "\u00a0", " ")
	label = spaceRun.ReplaceAllString(label, " ")
	label = strings.ReplaceAll(label, "ё", "е")
	return label
}

// Resolve maps a raw column label to its canonical field. The second return is
// false when no rule matches; unmatched columns are ignored, not errors.
// Resolution is a pure function of the label content.
func Resolve(label string) (FieldID, bool) {
	normalized := NormalizeLabel(label)
	if normalized == "" {
		return "", false
	}
	for _, rule := range headerRules {
		if rule.matches(normalized) {
			return rule.field, true
		}
	}
	return "", false
}

func (r headerRule) matches(label string) bool {
	for _, part := range r.none {
		if strings.Contains(label, part) {
			return false
		}
	}
	for _, part := range r.all {
		if !strings.Contains(label, part) {
			return false
		}
	}
	if len(r.any) == 0 {
		return len(r.all) > 0
	}
	for _, part := range r.any {
		if strings.Contains(label, part) {
			return true
		}
	}
	return false
}

package moderation

import (
	"sort"
	"strings"
)

type RejectReasonItem struct {
	ReasonCode      string
	Label           string
	ReasonText      string
	RequiredFixStep string
}

type rejectReasonTemplate struct {
	Label           string
	ReasonText      string
	RequiredFixStep string
}

var allowedRejectReasonCodes = map[string]struct{}{
	"INN_MISMATCH":         {},
	"INN_NOT_FOUND":        {},
	"OGRN_MISMATCH":        {},
	"BANK_DETAILS_INVALID": {},
	"DOC_UNREADABLE":       {},
	"DOC_EXPIRED":          {},
	"DOC_WRONG_PERSON":     {},
	"DOC_MISSING":          {},
	"OTHER":                {},
}

var rejectReasonTemplates = map[string]rejectReasonTemplate{
	"INN_MISMATCH": {
		Label:           "ИНН: не совпадает с документами",
		ReasonText:      "Указанный ИНН не совпадает с данными в приложенных документах.",
		RequiredFixStep: "Проверьте ИНН в анкете и отправьте заявку повторно.",
	},
	"INN_NOT_FOUND": {
		Label:           "ИНН: не найден в реестре",
		ReasonText:      "По указанному ИНН не найдена запись в государственном реестре.",
		RequiredFixStep: "Проверьте ИНН и статус регистрации, затем отправьте заявку повторно.",
	},
	"OGRN_MISMATCH": {
		Label:           "ОГРН/ОГРНИП: не совпадает",
		ReasonText:      "Указанный ОГРН или ОГРНИП не соответствует данным реестра.",
		RequiredFixStep: "Сверьте регистрационный номер с выпиской и исправьте анкету.",
	},
	"BANK_DETAILS_INVALID": {
		Label:           "Банковские реквизиты: некорректны",
		ReasonText:      "Расчетный счет не соответствует указанному БИК банка.",
		RequiredFixStep: "Проверьте БИК и номер счета в реквизитах и отправьте заявку повторно.",
	},
	"DOC_UNREADABLE": {
		Label:           "Документ: нечитаемый",
		ReasonText:      "Приложенный документ нечитаем или обрезан.",
		RequiredFixStep: "Загрузите четкий скан или фото документа целиком.",
	},
	"DOC_EXPIRED": {
		Label:           "Документ: устарел",
		ReasonText:      "Срок действия приложенного документа истек.",
		RequiredFixStep: "Загрузите актуальную версию документа.",
	},
	"DOC_WRONG_PERSON": {
		Label:           "Документ: другое лицо",
		ReasonText:      "Документ оформлен на другое лицо.",
		RequiredFixStep: "Загрузите документы владельца учетной записи продавца.",
	},
	"DOC_MISSING": {
		Label:           "Документ: отсутствует",
		ReasonText:      "Не приложен обязательный для вашей формы документ.",
		RequiredFixStep: "Загрузите недостающий документ и отправьте заявку повторно.",
	},
	"OTHER": {
		Label:           "Другое",
		ReasonText:      "Требуется корректировка заявки.",
		RequiredFixStep: "Обновите заявку по замечанию модератора и отправьте повторно.",
	},
}

func (s *Service) ListRejectReasons() []RejectReasonItem {
	codes := make([]string, 0, len(allowedRejectReasonCodes))
	for code := range allowedRejectReasonCodes {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	items := make([]RejectReasonItem, 0, len(codes))
	for _, code := range codes {
		template, ok := rejectReasonTemplates[code]
		if !ok {
			items = append(items, RejectReasonItem{
				ReasonCode: code,
				Label:      defaultRejectReasonLabel(code),
			})
			continue
		}
		items = append(items, RejectReasonItem{
			ReasonCode:      code,
			Label:           strings.TrimSpace(template.Label),
			ReasonText:      strings.TrimSpace(template.ReasonText),
			RequiredFixStep: strings.TrimSpace(template.RequiredFixStep),
		})
	}

	return items
}

// ResolveRejectReason expands a known reason code into full rejection text.
// Free-form reasons pass through untouched.
func ResolveRejectReason(reason string) string {
	code := strings.ToUpper(strings.TrimSpace(reason))
	if template, ok := rejectReasonTemplates[code]; ok {
		return template.ReasonText
	}
	return strings.TrimSpace(reason)
}

func defaultRejectReasonLabel(reasonCode string) string {
	normalized := strings.TrimSpace(reasonCode)
	if normalized == "" {
		return "Other"
	}
	normalized = strings.ReplaceAll(normalized, "_", " ")
	return strings.Title(strings.ToLower(normalized))
}

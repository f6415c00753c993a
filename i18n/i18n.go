// Package i18n holds the portal's UI strings in English and Thai.
package i18n

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

// Default is the language used when nothing better matches.
const Default = "th"

var supported = []language.Tag{language.Thai, language.English}

var matcher = language.NewMatcher(supported)

var messages = map[string]map[string]string{
	"en": {
		"report":                     "Report",
		"date":                       "Date",
		"run.success":                "OK",
		"run.empty":                  "Empty",
		"run.error":                  "Failed",
		"fetched_at":                 "Fetched at",
		"customer":                   "Customer",
		"system_size":                "System size",
		"investment":                 "Investment",
		"not_found":                  "Page not found",
		"server_error":               "Something went wrong",
		"unknown_report":             "Unknown report",
		"refresh":                    "Refresh",
		"work_order":                 "Work order",
		"product":                    "Product",
		"item":                       "Item",
		"warehouse":                  "Warehouse",
		"code":                       "Code",
		"report.vat-monthly":         "VAT by month and quarter",
		"report.ar-aging":            "Accounts receivable aging",
		"report.ap-aging":            "Accounts payable aging",
		"report.work-order-costs":    "Work order cost variance",
		"report.inventory-valuation": "Inventory valuation",
		"report.cogs":                "Cost of goods sold",
		"report.trial-balance":       "Trial balance",
		"report.solar-payback":       "Solar payback",
		"range":                      "Range",
		"start_date":                 "From",
		"end_date":                   "To",
		"runs":                       "Runs",
		"failures":                   "Failures",
		"duration":                   "Duration",
		"cached":                     "Cached",
		"rows":                       "Rows",
		"contact_id":                 "Contact ID",
		"warehouse_id":               "Warehouse ID",
		"required":                   "Required",
		"invalid_date":               "Use the YYYY-MM-DD format",
		"invalid_year":               "Invalid year",
		"invalid_id":                 "Must be a positive number",
		"must_be_positive":           "Must be positive",
		"out_of_range":               "Out of range",
		"inverted_range":             "Start date is after end date",
		"unknown_range":              "Unknown date range",
		"failed_to_load":             "failed to load report",
		"no_data":                    "no data for this filter",
		"login":                      "Sign in",
		"logout":                     "Sign out",
		"login_failed":               "Sign-in failed",
		"email":                      "Email",
		"password":                   "Password",
		"dashboard":                  "Reports",
		"recent_runs":                "Recent runs",
		"apply":                      "Apply",
		"export_csv":                 "Export CSV",
		"export_pdf":                 "Export PDF",
		"period":                     "Period",
		"as_of":                      "As of",
		"total":                      "Total",
		"quarter":                    "Quarter",
		"month":                      "Month",
		"output_vat":                 "Output VAT",
		"input_vat":                  "Input VAT",
		"net_vat":                    "Net VAT",
		"contact":                    "Contact",
		"current":                    "Current",
		"estimated":                  "Estimated",
		"actual":                     "Actual",
		"variance":                   "Variance",
		"status":                     "Status",
		"over":                       "Over budget",
		"under":                      "Under budget",
		"on":                         "On budget",
		"quantity":                   "Quantity",
		"value":                      "Value",
		"average_cost":               "Average cost",
		"balanced":                   "Balanced",
		"not_balanced":               "Not balanced",
		"debit":                      "Debit",
		"credit":                     "Credit",
		"account":                    "Account",
		"year":                       "Year",
		"cumulative":                 "Cumulative",
		"savings":                    "Savings",
		"break_even":                 "Break-even year",
		"no_break_even":              "No payback within the analysis period",
		"revenue":                    "Revenue",
		"opening_inventory":          "Opening inventory",
		"purchases":                  "Purchases",
		"closing_inventory":          "Closing inventory",
		"cogs":                       "Cost of goods sold",
		"computed_cogs":              "Opening + purchases - closing",
		"gross_profit":               "Gross profit",
		"gross_margin":               "Gross margin",
		"cogs_mismatch":              "Differs from the inventory movement",
		"range.this_month":           "This month",
		"range.last_month":           "Last month",
		"range.this_quarter":         "This quarter",
		"range.last_quarter":         "Last quarter",
		"range.this_year":            "This year",
		"range.last_year":            "Last year",
		"range.last_7_days":          "Last 7 days",
		"range.last_30_days":         "Last 30 days",
		"range.last_90_days":         "Last 90 days",
	},
	"th": {
		"report":                     "รายงาน",
		"date":                       "วันที่",
		"run.success":                "สำเร็จ",
		"run.empty":                  "ไม่มีข้อมูล",
		"run.error":                  "ล้มเหลว",
		"fetched_at":                 "ดึงข้อมูลเมื่อ",
		"customer":                   "ลูกค้า",
		"system_size":                "ขนาดระบบ",
		"investment":                 "เงินลงทุน",
		"not_found":                  "ไม่พบหน้าที่ต้องการ",
		"server_error":               "เกิดข้อผิดพลาด",
		"unknown_report":             "ไม่พบรายงาน",
		"refresh":                    "โหลดใหม่",
		"work_order":                 "ใบสั่งผลิต",
		"product":                    "สินค้า",
		"item":                       "รายการ",
		"warehouse":                  "คลังสินค้า",
		"code":                       "รหัส",
		"report.vat-monthly":         "ภาษีมูลค่าเพิ่มรายเดือนและรายไตรมาส",
		"report.ar-aging":            "อายุลูกหนี้",
		"report.ap-aging":            "อายุเจ้าหนี้",
		"report.work-order-costs":    "ผลต่างต้นทุนใบสั่งผลิต",
		"report.inventory-valuation": "มูลค่าสินค้าคงเหลือ",
		"report.cogs":                "ต้นทุนขาย",
		"report.trial-balance":       "งบทดลอง",
		"report.solar-payback":       "ระยะคืนทุนโซลาร์",
		"range":                      "ช่วงเวลา",
		"start_date":                 "ตั้งแต่",
		"end_date":                   "ถึง",
		"runs":                       "จำนวนครั้ง",
		"failures":                   "ล้มเหลว",
		"duration":                   "ระยะเวลา",
		"cached":                     "แคช",
		"rows":                       "แถว",
		"contact_id":                 "รหัสผู้ติดต่อ",
		"warehouse_id":               "รหัสคลังสินค้า",
		"required":                   "จำเป็นต้องระบุ",
		"invalid_date":               "ใช้รูปแบบ YYYY-MM-DD",
		"invalid_year":               "ปีไม่ถูกต้อง",
		"invalid_id":                 "ต้องเป็นตัวเลขบวก",
		"must_be_positive":           "ต้องมากกว่าศูนย์",
		"out_of_range":               "อยู่นอกช่วงที่กำหนด",
		"inverted_range":             "วันที่เริ่มต้นอยู่หลังวันที่สิ้นสุด",
		"unknown_range":              "ไม่รู้จักช่วงวันที่",
		"failed_to_load":             "โหลดรายงานไม่สำเร็จ",
		"no_data":                    "ไม่มีข้อมูลสำหรับตัวกรองนี้",
		"login":                      "เข้าสู่ระบบ",
		"logout":                     "ออกจากระบบ",
		"login_failed":               "เข้าสู่ระบบไม่สำเร็จ",
		"email":                      "อีเมล",
		"password":                   "รหัสผ่าน",
		"dashboard":                  "รายงาน",
		"recent_runs":                "การเรียกรายงานล่าสุด",
		"apply":                      "ใช้ตัวกรอง",
		"export_csv":                 "ส่งออก CSV",
		"export_pdf":                 "ส่งออก PDF",
		"period":                     "งวด",
		"as_of":                      "ณ วันที่",
		"total":                      "รวม",
		"quarter":                    "ไตรมาส",
		"month":                      "เดือน",
		"output_vat":                 "ภาษีขาย",
		"input_vat":                  "ภาษีซื้อ",
		"net_vat":                    "ภาษีสุทธิ",
		"contact":                    "ผู้ติดต่อ",
		"current":                    "ยังไม่ถึงกำหนด",
		"estimated":                  "ประมาณการ",
		"actual":                     "จริง",
		"variance":                   "ผลต่าง",
		"status":                     "สถานะ",
		"over":                       "เกินงบ",
		"under":                      "ต่ำกว่างบ",
		"on":                         "ตามงบ",
		"quantity":                   "จำนวน",
		"value":                      "มูลค่า",
		"average_cost":               "ต้นทุนเฉลี่ย",
		"balanced":                   "สมดุล",
		"not_balanced":               "ไม่สมดุล",
		"debit":                      "เดบิต",
		"credit":                     "เครดิต",
		"account":                    "บัญชี",
		"year":                       "ปี",
		"cumulative":                 "สะสม",
		"savings":                    "เงินที่ประหยัดได้",
		"break_even":                 "ปีที่คืนทุน",
		"no_break_even":              "ไม่คืนทุนภายในระยะเวลาวิเคราะห์",
		"revenue":                    "รายได้",
		"opening_inventory":          "สินค้าคงเหลือต้นงวด",
		"purchases":                  "ซื้อ",
		"closing_inventory":          "สินค้าคงเหลือปลายงวด",
		"cogs":                       "ต้นทุนขาย",
		"computed_cogs":              "ต้นงวด + ซื้อ - ปลายงวด",
		"gross_profit":               "กำไรขั้นต้น",
		"gross_margin":               "อัตรากำไรขั้นต้น",
		"cogs_mismatch":              "ไม่ตรงกับการเคลื่อนไหวสินค้า",
		"range.this_month":           "เดือนนี้",
		"range.last_month":           "เดือนที่แล้ว",
		"range.this_quarter":         "ไตรมาสนี้",
		"range.last_quarter":         "ไตรมาสที่แล้ว",
		"range.this_year":            "ปีนี้",
		"range.last_year":            "ปีที่แล้ว",
		"range.last_7_days":          "7 วันล่าสุด",
		"range.last_30_days":         "30 วันล่าสุด",
		"range.last_90_days":         "90 วันล่าสุด",
	},
}

// T translates code into lang, falling back to Default and then to the code itself.
func T(lang, code string) string {
	if m, ok := messages[Normalize(lang)]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[Default][code]; ok {
		return s
	}
	return code
}

// Normalize maps a tag such as "EN-gb" to a supported base language, or "".
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if base, _, ok := strings.Cut(lang, "-"); ok {
		lang = base
	}
	if _, ok := messages[lang]; ok {
		return lang
	}
	return ""
}

// DetectLanguage picks the best supported language from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	base, _ := supported[idx].Base()
	return base.String()
}

type ctxKey struct{}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the stored language, or Default.
func LangFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(ctxKey{}).(string); ok {
		if n := Normalize(l); n != "" {
			return n
		}
	}
	return Default
}

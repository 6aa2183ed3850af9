package types

// FieldSection JSON 字段与展示用 section 名称的对应关系
type FieldSection struct {
	Field   string
	Section string
}

// UniversityFieldKey 学校名称字段
const UniversityFieldKey = "university"

// UnknownUniversity 缺少学校名称时使用的占位值
const UnknownUniversity = "Unknown University"

// FieldSections 固定顺序的字段映射
var FieldSections = []FieldSection{
	{Field: "general", Section: "General information"},
	{Field: "programs", Section: "Programs"},
	{Field: "requirements", Section: "Admission requirements"},
	{Field: "cost", Section: "Cost"},
	{Field: "scholarships", Section: "Scholarships"},
	{Field: "application", Section: "Application guide"},
	{Field: "visa", Section: "Visa and immigration"},
	{Field: "housing", Section: "Housing and student life"},
	{Field: "careers", Section: "Career opportunities"},
	{Field: "contacts", Section: "Contact information"},
}

// SectionFor 返回字段对应的 section 名称
func SectionFor(field string) (string, bool) {
	for _, fs := range FieldSections {
		if fs.Field == field {
			return fs.Section, true
		}
	}
	return "", false
}

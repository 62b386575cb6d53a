package catalog

import "chatform/internal/model"

// Default returns the built-in product feedback questionnaire. It is
// used when no catalog has been seeded into storage.
func Default() *Catalog {
	c, err := New(DefaultQuestions())
	if err != nil {
		// The built-in set is validated by tests; a failure here is a bug.
		panic(err)
	}
	return c
}

// DefaultQuestions returns the built-in question definitions
func DefaultQuestions() []model.QuestionDefinition {
	return []model.QuestionDefinition{
		{
			ID:             "name",
			Prompt:         "您好！請問您的姓名是？",
			Type:           model.QuestionTypeText,
			Rule:           model.RuleRequired,
			Priority:       1,
			MappingContext: "提取使用者的姓名或全名。",
		},
		{
			ID:             "email",
			Prompt:         "您的電子郵件地址是？ (用於寄送問卷結果或後續通知)",
			Type:           model.QuestionTypeText,
			Rule:           model.RuleEmail,
			Priority:       2,
			MappingContext: "提取有效的電子郵件地址。",
		},
		{
			ID:             "age_group",
			Prompt:         "請問您的年齡區間是？",
			Type:           model.QuestionTypeSelect,
			Options:        []string{"18-24", "25-34", "35-44", "45-54", "55+"},
			Rule:           model.RuleRequired,
			Priority:       3,
			MappingContext: "將使用者的年齡描述映射到 ['18-24', '25-34', '35-44', '45-54', '55+'] 中的一個選項。",
		},
		{
			ID:             "product_satisfaction",
			Prompt:         "您對我們產品的整體滿意度如何？ (1-非常不滿意，5-非常滿意)",
			Type:           model.QuestionTypeNumber,
			Rule:           model.RuleRange1To5,
			Priority:       4,
			MappingContext: "提取使用者對產品的滿意度，數字範圍是1到5。",
		},
		{
			ID:             "detailed_dissatisfaction_reason",
			Prompt:         "很抱歉您對產品不滿意，請問具體原因是什麼？我們希望能改進。",
			Type:           model.QuestionTypeText,
			Rule:           model.RuleRequiredIfTriggered,
			Priority:       5,
			MappingContext: "提取使用者對產品不滿意的具體原因或建議。",
		},
		{
			ID:             "feedback_comments",
			Prompt:         "您對我們的產品有任何其他建議或意見嗎？ (可選)",
			Type:           model.QuestionTypeText,
			Rule:           model.RuleNone,
			Priority:       6,
			MappingContext: "提取使用者對產品的任何其他意見或建議。",
		},
		{
			ID:             "allow_follow_up",
			Prompt:         "您是否同意我們在未來進行後續追蹤或發送相關資訊？ (是/否)",
			Type:           model.QuestionTypeBoolean,
			Rule:           model.RuleYesNo,
			Priority:       7,
			MappingContext: "判斷使用者是否同意後續追蹤，結果應為 '是' 或 '否'。",
		},
	}
}

package dto

type ProposeSwapRequest struct {
	CounterpartID  string `json:"counterpart_id" validate:"required,uuid"`
	SkillOffered   string `json:"skill_offered" validate:"notblank,max=120"`
	SkillRequested string `json:"skill_requested" validate:"notblank,max=120"`
	Message        string `json:"message" validate:"max=1000"`
}

type RespondSwapRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accept reject"`
}

type CompleteSwapRequest struct {
	Rating   int    `json:"rating" validate:"gte=1,lte=5"`
	Feedback string `json:"feedback" validate:"max=2000"`
}

type SwapProgressRequest struct {
	Progress *int `json:"progress" validate:"required,gte=0,lte=100"`
}

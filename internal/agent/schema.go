package agent

// Structured-output shapes. Fields carry no omitempty: strict JSON schema
// mode requires every property.

type claimList struct {
	Claims []string `json:"claims" description:"Each factual claim as a self-contained sentence, copied from the article without corrections"`
}

type evaluationItem struct {
	Claim       string `json:"claim" description:"The claim exactly as given"`
	Verdict     string `json:"verdict" enum:"True,False" description:"Whether the claim is factually accurate"`
	Explanation string `json:"explanation" description:"One short sentence justifying the verdict"`
}

type evaluationList struct {
	Evaluations []evaluationItem `json:"evaluations"`
}

type credibilityItem struct {
	Entity          string `json:"entity" description:"The URL or person name as given"`
	Kind            string `json:"kind" enum:"url,person"`
	Reliability     string `json:"reliability" enum:"High,Medium,Low"`
	Bias            string `json:"bias" description:"Neutral, Slightly Biased or Strongly Biased, optionally with a direction"`
	Trustworthiness string `json:"trustworthiness" description:"One short sentence"`
}

type credibilityList struct {
	Entities []credibilityItem `json:"entities"`
}

type sentimentReport struct {
	OverallTone   string   `json:"overall_tone" enum:"Positive,Negative,Neutral,Mixed"`
	BiasScore     int      `json:"bias_score" description:"0 means perfectly balanced, 100 means extremely one-sided"`
	KeyHighlights []string `json:"key_highlights" description:"Phrases or passages that drive the tone"`
	Impact        string   `json:"impact" description:"Likely effect of the tone on reader perception"`
}

package services

import (
	"fmt"
	"strings"
)

// EvaluationCategories is the versioned category list sent to the model.
// Order here is the display order of charts.
var EvaluationCategories = []CategorySpec{
	{Key: "technical_skills", Subcategories: []string{"programming_languages", "frameworks_libraries", "databases", "cloud_devops"}},
	{Key: "experience", Subcategories: []string{"total_years", "relevant_years", "company_tier"}},
	{Key: "education", Subcategories: []string{"degree_level", "institution_reputation", "relevance"}},
	{Key: "projects_achievements", Subcategories: []string{"complexity", "impact", "innovation"}},
	{Key: "soft_skills", Subcategories: []string{"leadership", "communication", "problem_solving"}},
}

type CategorySpec struct {
	Key           string
	Subcategories []string
}

const noVerificationData = "No verification data available"

type PromptBuilder struct {
	categories []CategorySpec
}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{categories: EvaluationCategories}
}

// BuildNameExtractionPrompt asks for the resume owner's name.
func (pb *PromptBuilder) BuildNameExtractionPrompt(resumeText string) string {
	return fmt.Sprintf(`Extract the candidate's name from the provided resume text.

RESUME TEXT:
%s

Look for the name at the top of the resume, in contact sections, headers or signatures.

Respond ONLY with valid JSON in this exact format:
{
  "full_name": "<candidate's full name, null if not found>",
  "first_name": "<first name, null if not found>",
  "last_name": "<last name, null if not found>",
  "confidence_score": <number 0-100>,
  "extraction_notes": "<where and how the name was found>"
}

Rules:
1. Prefer the most prominent name mention, usually at the top
2. Be conservative: only extract names you are confident about
3. Never return company names, project names or references
4. If several variants exist, choose the most complete one`, resumeText)
}

// BuildURLExtractionPrompt asks for profile links mentioned in the resume.
func (pb *PromptBuilder) BuildURLExtractionPrompt(resumeText string) string {
	return fmt.Sprintf(`Extract social and professional profile URLs from the provided resume text.

RESUME TEXT:
%s

Look for GitHub profiles, LinkedIn profiles, personal portfolio or website URLs and other professional platforms (Stack Overflow, Medium, etc.).

Respond ONLY with valid JSON in this exact format:
{
  "github_url": "<GitHub URL, null if not found>",
  "linkedin_url": "<LinkedIn URL, null if not found>",
  "portfolio_url": "<personal website URL, null if not found>",
  "other_urls": {"<platform_name>": "<URL>"},
  "extracted_count": <number of URLs found>,
  "confidence_score": <number 0-100>,
  "extraction_notes": "<notes about the extraction>"
}

Rules:
1. Look for explicit URLs and for handles that can be turned into URLs ("GitHub: username")
2. Be conservative: only extract URLs you are confident about
3. For LinkedIn use the /in/<handle> form`, resumeText)
}

// BuildEvaluationPrompt embeds the verification context verbatim; pass ""
// when there is none.
func (pb *PromptBuilder) BuildEvaluationPrompt(resumeText, jobDescription, verificationContext string) string {
	if strings.TrimSpace(verificationContext) == "" {
		verificationContext = noVerificationData
	}

	var cats strings.Builder
	for i, c := range pb.categories {
		fmt.Fprintf(&cats, "    %q: {\n      \"score\": <number 0-100>,\n      \"evidence\": \"<specific evidence from resume>\",\n      \"breakdown\": {", c.Key)
		for j, sub := range c.Subcategories {
			if j > 0 {
				cats.WriteString(", ")
			}
			fmt.Fprintf(&cats, "%q: <number 0-100>", sub)
		}
		cats.WriteString("}\n    }")
		if i < len(pb.categories)-1 {
			cats.WriteString(",")
		}
		cats.WriteString("\n")
	}

	return fmt.Sprintf(`You are an expert HR recruiter and candidate evaluation specialist. Analyze the provided resume and job description and give a comprehensive candidate evaluation.

RESUME TEXT:
%s

JOB DESCRIPTION:
%s

VERIFICATION DATA (if available):
%s

Respond ONLY with valid JSON in this exact format:
{
  "total_score": <number 0-100>,
  "detailed_scores": {
%s  },
  "explanation": "<detailed explanation of the scoring>",
  "recommendations": ["<specific improvement suggestion>"],
  "strengths": ["<key candidate strength>"],
  "weaknesses": ["<area for improvement>"]
}

Focus on:
1. Match between candidate skills and job requirements
2. Evidence-based scoring with specific examples
3. Contextual understanding beyond keyword matching
4. Fair and unbiased evaluation`, resumeText, jobDescription, verificationContext, cats.String())
}

// BuildBiasAnalysisPrompt audits the job description and the evaluation.
func (pb *PromptBuilder) BuildBiasAnalysisPrompt(jobDescription, evaluationSummary string) string {
	return fmt.Sprintf(`Analyze the following job description and evaluation for potential bias.

JOB DESCRIPTION:
%s

EVALUATION RESULTS:
%s

Respond ONLY with valid JSON in this exact format:
{
  "bias_detected": <true|false>,
  "bias_types": ["<bias type>"],
  "bias_explanation": "<explanation of detected biases>",
  "suggestions": ["<suggestion to reduce bias>"],
  "fairness_score": <number 0-100>
}

Look for:
- Gender, age, cultural or educational bias
- Overemphasis on specific company names
- Unrealistic requirements
- Biased language in the job description`, jobDescription, evaluationSummary)
}

package review

import (
	"bytes"
	"fmt"
	"text/template"
)

const defaultMaxTokens = 4096

// PromptBuilder renders the fixed documentation review prompt.
type PromptBuilder struct {
	template *template.Template
}

// NewPromptBuilder constructs a builder with the default template.
func NewPromptBuilder() (*PromptBuilder, error) {
	tmpl, err := template.New("review").Parse(reviewPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &PromptBuilder{template: tmpl}, nil
}

// promptData holds the fields available to the template.
type promptData struct {
	Path    string
	Checks  []string
	Diff    string
	Content string
}

// Build renders the review prompt for a single file.
func (b *PromptBuilder) Build(path string, checks []string, diff, content string) (string, error) {
	var buf bytes.Buffer
	err := b.template.Execute(&buf, promptData{
		Path:    path,
		Checks:  checks,
		Diff:    diff,
		Content: content,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

const reviewPromptTemplate = `You are an expert documentation reviewer.
Your task is to review ONLY the changes made in this file, not the entire file.

## Context
File: {{.Path}}
This is documentation written in MDX format for the Mintlify platform.

## Style Guide
Follow the Google Developer Documentation Style Guide (https://developers.google.com/style).

## Enabled Checks
{{range .Checks}}- {{.}}
{{end}}
## Key Review Areas
1. **Grammar and Spelling**: Check for grammatical errors and spelling mistakes (American English)
2. **Style Guide Adherence**:
   - Use second-person voice ("you")
   - Use sentence-case for headings
   - Clear, concise language
   - Prerequisites at start of procedural content
3. **MDX/Mintlify Syntax**: Proper MDX syntax and Mintlify component usage
4. **Frontmatter**: Required fields: title (clear, descriptive, concise) and description (concise summary)
5. **Code Blocks**:
   - All code blocks MUST have language tags
   - Code blocks should be properly formatted
   - DO NOT test or validate the code itself - only check formatting
6. **Internal Links**: Use root-relative paths (e.g., ` + "`/path/to/page`" + `), not absolute URLs
7. **Alt Text**: All images must have descriptive alt text

## Special Requirements
- Custom language fences: ` + "`:::python`" + ` and ` + "`:::js`" + ` are valid syntax
- DO NOT review auto-generated reference docs (should be excluded already)
- DO NOT comment on code snippet functionality - only formatting
- DO NOT require localization in links (/python/ or /javascript/ prefixes)

## Diff of Changes
{{.Diff}}

## Full File Content (for context)
{{.Content}}

## Instructions
Review ONLY the changed lines (shown in the diff). For each issue found:
1. Identify the specific line number
2. Describe the issue clearly
3. Suggest a fix
4. Classify severity: "critical" (blocks merge), "major" (should fix), "minor" (optional)

Respond in JSON format:
{
  "issues": [
    {
      "line": <line_number>,
      "severity": "critical|major|minor",
      "category": "grammar|spelling|style|syntax|frontmatter|code_blocks|links|images",
      "issue": "Description of the issue",
      "suggestion": "Suggested fix or correction"
    }
  ],
  "summary": "Brief summary of the review"
}

If there are no issues, return: {"issues": [], "summary": "No issues found. Changes look good!"}
`

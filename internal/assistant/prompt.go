package assistant

import "strings"

const analysisIntro = `I need you to analyze a codebase and provide insights about its structure, patterns, and how to implement new features.
I'll provide information about the project structure and code patterns. Please analyze this and give me:

1. An overview of the codebase architecture and design
2. Common design patterns and coding conventions used
3. A guide on how to implement new features (like endpoints, database models, or frontend components)
4. Recommendations for best practices when working with this codebase

Here's data from the codebase analysis:

`

const analysisOutro = `

Please provide your analysis as structured sections:

# Overview
[Overall architecture and design of the codebase]

# Patterns
[Common design patterns and coding conventions]

# Examples
[Examples of implementing common features like:
- Adding a new API endpoint
- Creating a database model
- Adding a new frontend component
- Implementing a service or utility]

# Best Practices
[Best practices specific to this codebase]

# Recommendations
[Recommendations for working with this codebase effectively]
`

const askTemplate = `You are a helpful assistant that helps developers understand and work with a specific codebase.
I'll provide you with documentation about the codebase structure, patterns, and implementation guidelines.

Here's the codebase documentation:

{{document}}

Please use this documentation to answer the following question about the codebase:

{{question}}

Provide a detailed and specific answer based only on the information in the documentation.
If the documentation doesn't contain enough information to answer the question, please say so.
`

// BuildAnalysisPrompt wraps the prompt context in the analysis instructions.
func BuildAnalysisPrompt(promptContext string) string {
	var b strings.Builder
	b.Grow(len(analysisIntro) + len(promptContext) + len(analysisOutro))
	b.WriteString(analysisIntro)
	b.WriteString(strings.TrimRight(promptContext, "\n"))
	b.WriteString(analysisOutro)
	return b.String()
}

// BuildAskPrompt embeds the document verbatim ahead of the question.
func BuildAskPrompt(document, question string) string {
	// Single pass: placeholder text inside the document or question is left alone.
	return strings.NewReplacer("{{document}}", document, "{{question}}", question).Replace(askTemplate)
}

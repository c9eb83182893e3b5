package template

// DefaultConfirmation is the thank-you page shown after an accepted
// enrollment. It is markdown with {{variable}} placeholders.
const DefaultConfirmation = `# Thank you, {{first_name}}!

Your free trial lesson request has been received.

- **Trial:** {{date}}, {{start_time}} to {{end_time}}
- **Learning:** {{interest}}
- **Students:** {{students}}
- **Teacher:** {{teacher}}
- **Reference:** ` + "`{{reference}}`" + `
{{student_id_line}}
We will contact you at **{{email}}** to confirm your teacher.
`

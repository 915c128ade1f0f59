package mcpserver

// RecordFormatContract describes how contacts are stored and which fields
// the tools accept.
const RecordFormatContract = `# Rolodex Record Format

The book is a single UTF-8 JSON file holding an array of records, in the
order they were added. Every mutation rewrites the whole file.

## Record

` + "```" + `json
{
  "name": "Alice Example",
  "phone": "555-0100",
  "email": "alice@example.com",
  "address": "1 Main St",
  "notes": "met at the conference",
  "created_date": "2025-01-15 09:30:00",
  "modified_date": "2025-01-20 18:02:11"
}
` + "```" + `

## Rules

1. **name** and **phone** are required and must not be blank.
2. **phone** is the key. No two records share a phone after trimming
   surrounding whitespace.
3. **email**, **address** and **notes** are optional; missing means "".
4. All string fields are trimmed when written through the tools.
5. Timestamps use ` + "`YYYY-MM-DD HH:MM:SS`" + ` in local time. ` + "`created_date`" + ` never
   changes; ` + "`modified_date`" + ` is refreshed on every update.

## Tools

- ` + "`update_contact`" + ` only changes the arguments you pass. Pass an empty
  string to clear an optional field. Use ` + "`new_phone`" + ` to change the key.
- ` + "`search_contacts`" + ` matches name, phone and email case-insensitively; an
  empty query returns every contact.
- ` + "`list_contacts`" + ` returns contacts sorted by name.
`

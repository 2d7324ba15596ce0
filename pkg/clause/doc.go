// Package clause merges contract templates with questionnaire answers.
//
// A template is an HTML document containing two kinds of markers:
//
//	{{FIELD:<id>:<hint>}}   a blank the reader fills in by hand
//	{{COND:<id>}}           a block whose text depends on a questionnaire answer
//
// Field ids cannot contain ':' or '}', hints and conditional ids cannot contain
// '}'. There is no escaping: a '}' inside a hint ends the marker early.
//
// # Rendering
//
//	q, err := clause.ParseQuestionnaire(record.Questionnaire)
//	if err != nil {
//	    log.Printf("questionnaire ignored: %v", err) // q is empty, not nil
//	}
//	answers := clause.DefaultAnswers(q)
//	answers.Set("payment", "prepaid")
//
//	html, kept := clause.RenderWithFields(record.ContractHTML, q.Conditionals, answers, typed)
//
// Conditional markers are resolved first; field markers are then expanded over
// the whole result, so conditional text may itself contain fields. Each field
// becomes
//
//	<span class="contract-field" contenteditable="true" data-field="ID" data-ph="HINT"></span>
//
// Rendering never fails. Malformed markers stay in the output as text and
// unknown ids render empty.
//
// # Keeping typed values
//
// Every answer change re-renders the whole document. Collect what the user
// typed with CollectFieldValues (or keep the FieldValues returned by the last
// render) and pass it to the next RenderWithFields call. Values for fields that
// disappear from the output are dropped.
//
// # Authoring
//
// DetectConditionalIDs and ReconcileConditionals keep a questionnaire in step
// with its document; the Questionnaire methods edit sections, options and
// bindings while keeping conditional value maps keyed by option values.
// Validate lists the inconsistencies an editor should warn about.
//
// # Import and export
//
// ImportDocx turns a .docx file into marked HTML, guessing fields from blank
// conventions such as «___», [Client Name] and ____. Format and FormatWord wrap
// rendered HTML in a print or word processor document.
package clause

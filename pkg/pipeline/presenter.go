package pipeline

import "fmt"

// reviewMessage frames a first-pass draft with review instructions for
// the transcript.
func reviewMessage(draft string) string {
	return fmt.Sprintf(`Solution complete. Here's my step by step solution:

%s

---
Please review:
- Reply "approve" if the solution is correct
- Or provide specific feedback for improvements.`, draft)
}

// revisedMessage frames a refined draft, echoing the feedback it
// addresses.
func revisedMessage(feedback, draft string) string {
	return fmt.Sprintf(`Solution improved based on your feedback.

Your feedback: %s

Improved solution:
%s

---
Please review again:
- Reply "approve" if this solution looks good
- Or provide additional feedback for further refinements.`, feedback, draft)
}

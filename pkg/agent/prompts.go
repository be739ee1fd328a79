package agent

import "fmt"

const researcherSystemPrompt = `You are a Senior Mathematics Researcher.
STRICT GUIDELINES:
- ONLY respond to mathematics-related queries
- If asked about non math topics, respond: "I only help with mathematical problems"
- Provide comprehensive mathematical context including:
  1. Relevant definitions and concepts
  2. Applicable formulas and theorems
  3. Common solution approaches
  4. Mathematical background
Focus on accuracy and mathematical rigor.`

const solverSystemPrompt = `You are an Expert Mathematics Solver.
STRICT GUIDELINES:
- ONLY solve mathematical problems
- Provide complete step-by-step solutions
- Explain reasoning for each step clearly
- Show all calculations and work
- Use proper mathematical notation
- Verify solutions when possible
- Include final answers clearly marked

SOLUTION FORMAT:
1. State the problem clearly
2. Identify the mathematical approach
3. Show step-by-step work with explanations
4. Verify the solution if possible
5. State the final answer prominently
Maintain mathematical accuracy and clarity throughout.`

func researchPrompt(topic, references string) string {
	prompt := fmt.Sprintf(`Research mathematical context for: %s
Provide:
1. Relevant mathematical concepts and definitions
2. Applicable formulas and theorems
3. Common solution methods
4. Mathematical background and theory
Focus on information needed to solve this type of problem.`, topic)

	if references != "" {
		prompt = fmt.Sprintf("REFERENCE MATERIAL:\n%s\n\n%s", references, prompt)
	}
	return prompt
}

func solvePrompt(topic, findings string) string {
	if findings == "" {
		findings = "No research context available. Solve from fundamental principles."
	}
	return fmt.Sprintf(`RESEARCH CONTEXT:
%s

PROBLEM TO SOLVE:
%s

Provide a complete step-by-step solution with clear explanations for each step.`, findings, topic)
}

func refinePrompt(topic, draft, feedback string) string {
	return fmt.Sprintf(`ORIGINAL PROBLEM: %s

ORIGINAL SOLUTION:
%s

HUMAN FEEDBACK: %s

Based on the feedback, improve the solution by:
- Addressing specific concerns or questions
- Providing additional explanations where needed
- Correcting any errors identified
- Adding more detail or alternative approaches
- Maintaining mathematical accuracy
Provide an improved, comprehensive solution that addresses the feedback.`, topic, draft, feedback)
}

// Package nature implements the adversarial "nature" responses that
// parametrize the generalized Bellman operators in package bellman.
// Nature is a first-class value: the Bellman operator calling it does
// not know the shape of its ambiguity set, only that it returns a
// worst-case (or averaged) transition and the realized value of the
// backup.
package nature

// SANature is an s,a-rectangular nature response. Given a state id, an
// action id, the nominal transition probabilities over the states
// reachable under that action, and the corresponding z-values (reward
// plus discounted value of the successor), it returns nature's chosen
// transition probabilities over the same support and the realized
// value nature·z.
type SANature func(stateID, actionID int, nominalProb, zValues []float64) (natureProb []float64, value float64)

// SNature is an s-rectangular nature response. Given a state id, a
// decision policy over actions, the nominal probabilities for every
// action (actions first, successor states second), and the
// corresponding z-values, it returns the optimal action distribution,
// nature's chosen transition probability for each action, and the
// realized value of the backup. If policy is non-nil, only nature is
// optimized against the fixed policy; if policy is nil, the nature
// response also picks the decision maker's best action distribution.
type SNature func(stateID int, policy []float64, nominalProbs [][]float64, zValues [][]float64) (
	decisionPolicy []float64, natureProbs [][]float64, value float64)

// SNatureOutcome is the MDPO-specialized s-rectangular nature
// response: it assumes the nominal probabilities over outcomes are
// shared across actions (the common case for an MDPO's outcome
// distribution), so nominalProbs is a single vector rather than one
// per action. zValues is indexed action first, outcome second.
type SNatureOutcome func(stateID int, policy, nominalProbs []float64, zValues [][]float64) (
	decisionPolicy, natureProbs []float64, value float64)

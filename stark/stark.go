// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package stark implements the top-level STARK verifier: it commits the
// composition polynomial, draws the out-of-domain (OODS) evaluation point,
// checks the claimed composition value against the constraint evaluator,
// and delegates the rest to the PCS verifier.
package stark

import (
	"sort"

	"github.com/luxfi/circlestark/channel"
	"github.com/luxfi/circlestark/circle"
	"github.com/luxfi/circlestark/field"
	"github.com/luxfi/circlestark/pcs"
	"github.com/luxfi/circlestark/verrors"
	"github.com/luxfi/circlestark/wire"
)

// preprocessedTraceIdx is the fixed tree index the preprocessed trace was
// committed at, by convention of the committing prover.
const preprocessedTraceIdx = 0

// secureExtensionDegree is the number of base-field columns the composition
// polynomial is split across (QM31's degree over M31).
const secureExtensionDegree = 4

// Component is the evaluator interface an external constraint framework
// provides: everything the verifier needs to know about one AIR component
// without re-deriving the constraint system itself.
type Component interface {
	NConstraints() int
	TraceLogDegreeBounds() [][]uint32
	PreprocessedColumnIndices() []int
	MaxConstraintLogDegreeBound() uint32
	MaskPoints(point circle.Point[field.QM31]) [][][]circle.Point[field.QM31]
	EvaluateConstraintQuotientsAtPoint(
		point circle.Point[field.QM31],
		mask [][][]field.QM31,
		acc *PointEvaluationAccumulator,
	)
}

// Components aggregates a list of components into one Component, the way
// the verifier sees the whole AIR: constraint counts sum, mask points
// concatenate per phase/column, and the preprocessed-trace phase is
// overwritten with the union of every component's declared preprocessed
// column indices.
type Components struct {
	List                 []Component
	NPreprocessedColumns int
}

func (cs Components) NConstraints() int {
	n := 0
	for _, c := range cs.List {
		n += c.NConstraints()
	}
	return n
}

func (cs Components) TraceLogDegreeBounds() [][]uint32 {
	var out [][]uint32
	for _, c := range cs.List {
		out = append(out, c.TraceLogDegreeBounds()...)
	}
	return out
}

func (cs Components) PreprocessedColumnIndices() []int {
	set := map[int]bool{}
	for _, c := range cs.List {
		for _, idx := range c.PreprocessedColumnIndices() {
			set[idx] = true
		}
	}
	out := make([]int, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// MaxConstraintLogDegreeBound returns the largest bound across components;
// zero for an empty component list.
func (cs Components) MaxConstraintLogDegreeBound() uint32 {
	var max uint32
	for _, c := range cs.List {
		if b := c.MaxConstraintLogDegreeBound(); b > max {
			max = b
		}
	}
	return max
}

// MaskPoints aggregates every component's mask points phase-by-phase and
// column-by-column, then replaces the preprocessed-trace phase with one
// sample point per declared preprocessed column index.
func (cs Components) MaskPoints(point circle.Point[field.QM31]) [][][]circle.Point[field.QM31] {
	if len(cs.List) == 0 {
		return nil
	}

	perComponent := make([][][][]circle.Point[field.QM31], len(cs.List))
	for i, c := range cs.List {
		perComponent[i] = c.MaskPoints(point)
	}

	numPhases := len(perComponent[0])
	aggregated := make([][][]circle.Point[field.QM31], numPhases)
	for phase := 0; phase < numPhases; phase++ {
		maxCols := 0
		for _, m := range perComponent {
			if phase < len(m) && len(m[phase]) > maxCols {
				maxCols = len(m[phase])
			}
		}
		aggregated[phase] = make([][]circle.Point[field.QM31], maxCols)
		for col := 0; col < maxCols; col++ {
			var collected []circle.Point[field.QM31]
			for _, m := range perComponent {
				if phase < len(m) && col < len(m[phase]) {
					collected = append(collected, m[phase][col]...)
				}
			}
			aggregated[phase][col] = collected
		}
	}

	if numPhases > preprocessedTraceIdx {
		if cs.NPreprocessedColumns > 0 {
			preprocessed := make([][]circle.Point[field.QM31], cs.NPreprocessedColumns)
			for _, c := range cs.List {
				for _, idx := range c.PreprocessedColumnIndices() {
					if idx < cs.NPreprocessedColumns {
						preprocessed[idx] = []circle.Point[field.QM31]{point}
					}
				}
			}
			aggregated[preprocessedTraceIdx] = preprocessed
		} else {
			aggregated[preprocessedTraceIdx] = nil
		}
	}
	return aggregated
}

func (cs Components) EvaluateConstraintQuotientsAtPoint(
	point circle.Point[field.QM31],
	mask [][][]field.QM31,
	acc *PointEvaluationAccumulator,
) {
	for _, c := range cs.List {
		c.EvaluateConstraintQuotientsAtPoint(point, mask, acc)
	}
}

// EvalCompositionPolynomialAtPoint runs every component's constraint
// evaluator into a single accumulator and returns the combined value.
func (cs Components) EvalCompositionPolynomialAtPoint(
	point circle.Point[field.QM31],
	maskValues [][][]field.QM31,
	randomCoeff field.QM31,
) field.QM31 {
	acc := NewPointEvaluationAccumulator(randomCoeff)
	cs.EvaluateConstraintQuotientsAtPoint(point, maskValues, acc)
	return acc.Finalize()
}

// PointEvaluationAccumulator folds N evaluations of constraint quotients at
// a single point into one combined value: acc = acc*random_coeff + eval,
// applied in the order components are evaluated.
type PointEvaluationAccumulator struct {
	randomCoeff  field.QM31
	accumulation field.QM31
}

// NewPointEvaluationAccumulator starts a fresh accumulator at zero.
func NewPointEvaluationAccumulator(randomCoeff field.QM31) *PointEvaluationAccumulator {
	return &PointEvaluationAccumulator{randomCoeff: randomCoeff}
}

func (a *PointEvaluationAccumulator) Accumulate(eval field.QM31) {
	a.accumulation = a.accumulation.Mul(a.randomCoeff).Add(eval)
}

func (a *PointEvaluationAccumulator) Finalize() field.QM31 {
	return a.accumulation
}

// extractCompositionOodsEval pulls the claimed composition OODS value out of
// the last block of sampled_values: four columns, each a single sample,
// recombined via the partial-evaluation basis.
func extractCompositionOodsEval(proof wire.StarkProof) (field.QM31, error) {
	if len(proof.SampledValues) == 0 {
		return field.QM31Zero(), verrors.New(verrors.InvalidStructure, "sampled_values is empty")
	}
	compositionMask := proof.SampledValues[len(proof.SampledValues)-1]
	if len(compositionMask) != secureExtensionDegree {
		return field.QM31Zero(), verrors.New(verrors.InvalidStructure, "composition mask has %d columns, want %d", len(compositionMask), secureExtensionDegree)
	}
	var evals [secureExtensionDegree]field.QM31
	for i, col := range compositionMask {
		if len(col) != 1 {
			return field.QM31Zero(), verrors.New(verrors.InvalidStructure, "composition mask column %d has %d samples, want 1", i, len(col))
		}
		evals[i] = col[0]
	}
	return field.FromPartialEvals(evals), nil
}

// buildTreeSamples flattens the per-(tree, column, sample) mask points and
// values, produced by Components.MaskPoints and carried on proof's
// sampled_values, into the PCS verifier's TreeSample shape. Each tree's
// column log sizes are looked up from the MerkleVerifier's per-column
// record, recorded verbatim at commit time.
func buildTreeSamples(
	trees []*pcsTreeLister,
	points [][][]circle.Point[field.QM31],
	values [][][]field.QM31,
) ([]pcs.TreeSample, error) {
	if len(points) != len(trees) || len(values) != len(trees) {
		return nil, verrors.New(verrors.InvalidStructure, "sample tree count mismatch: %d trees, %d point sets, %d value sets", len(trees), len(points), len(values))
	}
	var samples []pcs.TreeSample
	for t, tree := range trees {
		if len(points[t]) != len(values[t]) {
			return nil, verrors.New(verrors.InvalidStructure, "sample column count mismatch in tree %d", t)
		}
		for c := range points[t] {
			if c >= len(tree.PerColumnLogSizes) {
				return nil, verrors.New(verrors.InvalidStructure, "sampled column %d out of range for tree %d", c, t)
			}
			if len(points[t][c]) != len(values[t][c]) {
				return nil, verrors.New(verrors.InvalidStructure, "sample count mismatch in tree %d column %d", t, c)
			}
			logSize := tree.PerColumnLogSizes[c]
			for i := range points[t][c] {
				samples = append(samples, pcs.TreeSample{
					Tree:    t,
					Column:  c,
					LogSize: logSize,
					Point:   points[t][c][i],
					Value:   values[t][c][i],
				})
			}
		}
	}
	return samples, nil
}

// pcsTreeLister is the minimal surface buildTreeSamples needs from a
// committed tree; Verify fills one from each *vcs.MerkleVerifier's
// PerColumnLogSizes.
type pcsTreeLister struct {
	PerColumnLogSizes []uint32
}

// Verify runs the full top-level STARK verification. The caller must have
// already committed every trace tree (preprocessed, trace, interaction...)
// on pcsVerifier before calling Verify; Verify commits only the trailing
// composition-polynomial tree itself.
func Verify(components []Component, ch *channel.Channel, pcsVerifier *pcs.Verifier, proof wire.StarkProof) error {
	if len(pcsVerifier.Trees) <= preprocessedTraceIdx {
		return verrors.New(verrors.InvalidStructure, "not enough committed trees (%d) to access preprocessed trace at index %d", len(pcsVerifier.Trees), preprocessedTraceIdx)
	}
	nPreprocessedColumns := len(pcsVerifier.Trees[preprocessedTraceIdx].PerColumnLogSizes)

	cs := Components{List: components, NPreprocessedColumns: nPreprocessedColumns}

	randomCoeff := ch.DrawFelt()

	compositionLogDegreeBound := cs.MaxConstraintLogDegreeBound()
	logBoundsForCommit := make([]uint32, secureExtensionDegree)
	for i := range logBoundsForCommit {
		logBoundsForCommit[i] = compositionLogDegreeBound
	}

	if len(proof.Commitments) == 0 {
		return verrors.New(verrors.InvalidStructure, "missing composition commitment")
	}
	compositionCommitment := proof.Commitments[len(proof.Commitments)-1]
	pcsVerifier.Commit(compositionCommitment, logBoundsForCommit, ch)

	oodsPoint := circle.GetRandomPointQM31(ch)

	samplePoints := cs.MaskPoints(oodsPoint)
	trailing := make([][]circle.Point[field.QM31], secureExtensionDegree)
	for i := range trailing {
		trailing[i] = []circle.Point[field.QM31]{oodsPoint}
	}
	samplePoints = append(samplePoints, trailing)

	compositionOodsEval, err := extractCompositionOodsEval(proof)
	if err != nil {
		return err
	}

	actualCompositionEval := cs.EvalCompositionPolynomialAtPoint(oodsPoint, proof.SampledValues, randomCoeff)
	if !compositionOodsEval.Equal(actualCompositionEval) {
		return verrors.New(verrors.OodsNotMatching, "composition OODS value disagrees with recomputed value")
	}

	treeListers := make([]*pcsTreeLister, len(pcsVerifier.Trees))
	for i, t := range pcsVerifier.Trees {
		treeListers[i] = &pcsTreeLister{PerColumnLogSizes: t.PerColumnLogSizes}
	}
	samples, err := buildTreeSamples(treeListers, samplePoints, proof.SampledValues)
	if err != nil {
		return err
	}

	return pcsVerifier.VerifyValues(samples, proof.CommitmentSchemeProof, ch)
}

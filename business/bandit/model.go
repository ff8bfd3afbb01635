package bandit

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

var ErrMalformedModel = errors.New("malformed user model")

// UserModel is the per-user LinUCB ridge-regression state.
// Theta and AInv are always recomputed together from A and B.
type UserModel struct {
	A     *mat.Dense
	B     *mat.VecDense
	Theta *mat.VecDense
	AInv  *mat.Dense

	Updates   int
	UpdatedAt time.Time
}

// NewUserModel returns the cold-start model: A = I, b = 0.
func NewUserModel() *UserModel {
	return &UserModel{
		A:     identity(FeatureDim),
		B:     mat.NewVecDense(FeatureDim, nil),
		Theta: mat.NewVecDense(FeatureDim, nil),
		AInv:  identity(FeatureDim),
	}
}

// Update applies one observation:
// A += x x^T, b += r x, then A^-1 and theta are rebuilt from scratch.
func (m *UserModel) Update(x FeatureVector, reward float64, at time.Time) {
	v := x.Vec()
	addMatrix(m.A, outerProduct(v))
	addVector(m.B, reward, v)
	m.recompute()
	m.Updates++
	m.UpdatedAt = at
}

func (m *UserModel) recompute() {
	m.AInv = invert(m.A)
	m.Theta = multiplyMatrixVector(m.AInv, m.B)
}

// Clone returns a deep copy that shares no backing storage.
func (m *UserModel) Clone() *UserModel {
	return &UserModel{
		A:         mat.DenseCopyOf(m.A),
		B:         mat.VecDenseCopyOf(m.B),
		Theta:     mat.VecDenseCopyOf(m.Theta),
		AInv:      mat.DenseCopyOf(m.AInv),
		Updates:   m.Updates,
		UpdatedAt: m.UpdatedAt,
	}
}

// validate reports whether the model has the expected shape.
func (m *UserModel) validate() error {
	if m == nil || m.A == nil || m.B == nil || m.Theta == nil || m.AInv == nil {
		return fmt.Errorf("%w: missing component", ErrMalformedModel)
	}
	if r, c := m.A.Dims(); r != FeatureDim || c != FeatureDim {
		return fmt.Errorf("%w: A is %dx%d", ErrMalformedModel, r, c)
	}
	if r, c := m.AInv.Dims(); r != FeatureDim || c != FeatureDim {
		return fmt.Errorf("%w: AInv is %dx%d", ErrMalformedModel, r, c)
	}
	if m.B.Len() != FeatureDim || m.Theta.Len() != FeatureDim {
		return fmt.Errorf("%w: vector length mismatch", ErrMalformedModel)
	}
	return nil
}

// ---- Persistence ----

// userModelState is the stored form: nested numeric arrays.
type userModelState struct {
	A         [][]float64 `json:"A"`
	B         []float64   `json:"b"`
	Theta     []float64   `json:"theta"`
	AInv      [][]float64 `json:"AInv"`
	Updates   int         `json:"updates"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (m *UserModel) MarshalJSON() ([]byte, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(userModelState{
		A:         denseRows(m.A),
		B:         vecSlice(m.B),
		Theta:     vecSlice(m.Theta),
		AInv:      denseRows(m.AInv),
		Updates:   m.Updates,
		UpdatedAt: m.UpdatedAt,
	})
}

// UnmarshalJSON restores A and b and recomputes the derived fields so a
// stale or hand-edited theta can never disagree with A.
func (m *UserModel) UnmarshalJSON(data []byte) error {
	var st userModelState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedModel, err)
	}

	if len(st.A) != FeatureDim || len(st.B) != FeatureDim {
		return fmt.Errorf("%w: stored dimension %d, want %d", ErrMalformedModel, len(st.A), FeatureDim)
	}
	a := mat.NewDense(FeatureDim, FeatureDim, nil)
	for i, row := range st.A {
		if len(row) != FeatureDim {
			return fmt.Errorf("%w: row %d has %d columns", ErrMalformedModel, i, len(row))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite A[%d][%d]", ErrMalformedModel, i, j)
			}
			a.Set(i, j, v)
		}
	}
	for i, v := range st.B {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite b[%d]", ErrMalformedModel, i)
		}
	}

	m.A = a
	m.B = mat.NewVecDense(FeatureDim, append([]float64(nil), st.B...))
	m.Updates = st.Updates
	m.UpdatedAt = st.UpdatedAt
	m.recompute()
	return nil
}

func denseRows(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range r {
		out[i] = make([]float64, c)
		copy(out[i], m.RawRowView(i))
	}
	return out
}

func vecSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

package simerrors

import (
	"testing"

	"go.viam.com/test"
)

func TestWrap(t *testing.T) {
	base := New("degenerate path")
	wrapped := Wrap(base, "smoothing road gesture 3")
	test.That(t, wrapped, test.ShouldNotBeNil)
	test.That(t, wrapped.Error(), test.ShouldContainSubstring, "degenerate path")
	test.That(t, wrapped.Error(), test.ShouldContainSubstring, "smoothing road gesture 3")
}

func TestWrapf(t *testing.T) {
	base := New("unknown step")
	wrapped := Wrapf(base, "history for project %d", 7)
	test.That(t, wrapped.Error(), test.ShouldContainSubstring, "history for project 7")
}

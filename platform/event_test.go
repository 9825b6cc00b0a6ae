package platform

import (
	"context"
	"testing"
	"time"

	"github.com/joeycumines/go-uiloop/dispatch"
	"github.com/joeycumines/go-uiloop/notice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_DeliverThroughSource(t *testing.T) {
	l := newLoop(t)
	d, err := dispatch.New(l)
	require.NoError(t, err)
	defer d.Close()

	root := dispatch.NewBox(`root`, dispatch.Rect{Size: dispatch.Vec2{X: 100, Y: 100}})
	d.SetRoot(root)

	var got []string
	for _, name := range []dispatch.Name{dispatch.NameTouchStart, dispatch.NameTouchEnd, dispatch.NameKeyDown, dispatch.NameMouseDown, dispatch.NameClick} {
		name := name
		root.Notification().OnFunc(name, func(notice.Event) {
			got = append(got, name.String())
			if name == dispatch.NameClick {
				l.Stop()
			}
		}, 0)
	}

	ch := make(chan Event, 8)
	src, err := NewChannelSource(ch, func(e Event) {
		assert.True(t, e.Deliver(d), e.Kind.String())
	})
	require.NoError(t, err)
	require.NoError(t, l.AddSource(src))

	ch <- Keyboard(dispatch.KeyInput{Code: 'x', ASCII: true, Down: true})
	ch <- MouseMove(200, 200)
	ch <- MousePress(dispatch.MouseRight, true)
	ch <- TouchStart(dispatch.RawTouch{ID: 1, X: 10, Y: 10, Force: 1})
	ch <- TouchEnd(dispatch.RawTouch{ID: 1, X: 10, Y: 10})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Run(ctx, -1))
	assert.Equal(t, []string{`KeyDown`, `MouseDown`, `TouchStart`, `TouchEnd`, `Click`}, got)
}

func TestEvent_DeliverUnknown(t *testing.T) {
	assert.False(t, Event{}.Deliver(nil))
	assert.Equal(t, `unknown`, KindUnknown.String())
	assert.Equal(t, `imecontrol`, IMEControl(dispatch.KeyLeft).Kind.String())
	assert.Equal(t, `kind(99)`, Kind(99).String())
}

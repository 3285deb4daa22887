package dialog

import (
	"fmt"

	"github.com/looplab/fsm"

	"github.com/ivanoskov/civic_bot/internal/model"
)

// parents — куда ведет команда "назад" из каждого состояния
var parents = map[model.State]model.State{
	model.StateWelcomeSelection:              model.StateLanguageSelection,
	model.StateTrackingLoginID:               model.StateWelcomeSelection,
	model.StateLoginName:                     model.StateWelcomeSelection,
	model.StateLoginMobile:                   model.StateLoginName,
	model.StateLoginAreaWard:                 model.StateLoginMobile,
	model.StateMainMenu:                      model.StateWelcomeSelection,
	model.StateCategorySelected:              model.StateMainMenu,
	model.StatePropertyTaxInput:              model.StateMainMenu,
	model.StateSubIssueSelected:              model.StateCategorySelected,
	model.StateWaitingImage:                  model.StateSubIssueSelected,
	model.StateWaitingDescription:            model.StateSubIssueSelected,
	model.StateWaitingLocation:               model.StateWaitingImage,
	model.StateWaitingSolutionConfirmation:   model.StateWaitingLocation,
	model.StateWaitingResolutionConfirmation: model.StateWaitingSolutionConfirmation,
	model.StateOtherIssues:                   model.StateMainMenu,
}

// forward — переходы, которые выполняют обработчики состояний
var forward = map[model.State][]model.State{
	model.StateLogin:                         {model.StateLanguageSelection},
	model.StateLanguageSelection:             {model.StateWelcomeSelection},
	model.StateWelcomeSelection:              {model.StateLoginName, model.StateTrackingLoginID},
	model.StateTrackingLoginID:               {model.StateOtherIssues, model.StateTerminated},
	model.StateLoginName:                     {model.StateLoginMobile},
	model.StateLoginMobile:                   {model.StateLoginAreaWard},
	model.StateLoginAreaWard:                 {model.StateMainMenu},
	model.StateMainMenu:                      {model.StateCategorySelected, model.StatePropertyTaxInput},
	model.StateCategorySelected:              {model.StateSubIssueSelected},
	model.StateSubIssueSelected:              {model.StateWaitingImage, model.StateWaitingDescription},
	model.StateWaitingImage:                  {model.StateWaitingLocation},
	model.StateWaitingLocation:               {model.StateWaitingSolutionConfirmation},
	model.StateWaitingDescription:            {model.StateOtherIssues},
	model.StateWaitingSolutionConfirmation:   {model.StateWaitingResolutionConfirmation, model.StateOtherIssues},
	model.StateWaitingResolutionConfirmation: {model.StateOtherIssues},
	model.StatePropertyTaxInput:              {model.StateOtherIssues},
	model.StateOtherIssues:                   {model.StateMainMenu, model.StateTerminated},
}

// Parent возвращает состояние, в которое ведет команда "назад"
func Parent(s model.State) (model.State, bool) {
	p, ok := parents[s]
	return p, ok
}

// graph проверяет, что состояние достигается только из перечисленных предшественников.
// Событие перехода называется по целевому состоянию.
type graph struct {
	events []fsm.EventDesc
}

func newGraph() *graph {
	sources := make(map[model.State][]string)
	add := func(src, dst model.State) {
		sources[dst] = append(sources[dst], string(src))
	}
	for _, src := range model.States {
		for _, dst := range forward[src] {
			add(src, dst)
		}
		if p, ok := parents[src]; ok {
			add(src, p)
		}
	}

	g := &graph{}
	for _, dst := range model.States {
		if src := sources[dst]; len(src) > 0 {
			g.events = append(g.events, fsm.EventDesc{Name: string(dst), Src: src, Dst: string(dst)})
		}
	}
	return g
}

// allowed сообщает, разрешен ли переход from -> to
func (g *graph) allowed(from, to model.State) bool {
	if from == to {
		return true
	}
	machine := fsm.NewFSM(string(from), g.events, nil)
	return machine.Can(string(to))
}

func (g *graph) check(from, to model.State) error {
	if !g.allowed(from, to) {
		return fmt.Errorf("transition %s -> %s is not allowed", from, to)
	}
	return nil
}

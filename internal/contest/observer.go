package contest

// Observer is told about contest lifecycle events. Calls come from session goroutines and must not
// block for long.
type Observer interface {
	ContestStarted(info Info)
	MessageCounted(info Info, msg Message)
	ContestFinished(info Info, result Result)
	StartRaceLost(channelID ChannelID)
}

// NopObserver ignores everything; embed it to implement only some of the callbacks.
type NopObserver struct{}

func (NopObserver) ContestStarted(Info)          {}
func (NopObserver) MessageCounted(Info, Message) {}
func (NopObserver) ContestFinished(Info, Result) {}
func (NopObserver) StartRaceLost(ChannelID)      {}

// Observers fans every event out to each of its members in order.
type Observers []Observer

func (o Observers) ContestStarted(info Info) {
	for _, obs := range o {
		obs.ContestStarted(info)
	}
}

func (o Observers) MessageCounted(info Info, msg Message) {
	for _, obs := range o {
		obs.MessageCounted(info, msg)
	}
}

func (o Observers) ContestFinished(info Info, result Result) {
	for _, obs := range o {
		obs.ContestFinished(info, result)
	}
}

func (o Observers) StartRaceLost(channelID ChannelID) {
	for _, obs := range o {
		obs.StartRaceLost(channelID)
	}
}

// Package rxws turns a callback driven websocket transport into a single ordered, multi subscriber
// event stream.
//
// A Client owns at most one connection. Connect, Send and Disconnect attach to the client's event
// stream, trigger their side effect and wait for the first Open, QueuedMessage or Closed event.
// Listen and EventStream observe the stream without side effects. Events published while nobody
// is subscribed are dropped.
//
//	client, err := rxws.New(
//		rxws.WithURL("wss://stream.example.com/ws"),
//		rxws.WithConverterFactory(rxws.NewJSONConverterFactory()),
//		rxws.WithReceiveInterceptor(rxws.TrimSpaceInterceptor()),
//	)
//	if err != nil {
//		return err
//	}
//
//	messages := client.Listen()
//	defer messages.Close()
//
//	if _, err := client.Connect(ctx); err != nil {
//		return err
//	}
//	if _, err := client.Send(ctx, rxws.Value(subscribeRequest)); err != nil {
//		return err
//	}
//
//	for {
//		m, err := messages.Next(ctx)
//		if errors.Is(err, rxws.ErrStreamCompleted) {
//			return nil
//		}
//		if err != nil {
//			return err
//		}
//		...
//	}
//
// A user requested Disconnect completes the stream normally. A close initiated by the peer
// terminates it with a *CloseError, and a transport failure with a *TransportError. The stream
// terminates once per client.
package rxws

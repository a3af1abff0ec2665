// Demo walks the whole client flow end to end against in-memory storage
// and the simulated backend with near-zero delays: OTP sign-in, chatroom
// lifecycle, message exchange, history pagination and UI flags.
package main

import (
	"context"
	"log"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-client/internal/domain/model"
	"ai-chat-client/internal/infra/adapters/backend"
	"ai-chat-client/internal/infra/kv"
	"ai-chat-client/internal/store"
)

func main() {
	ctx := context.Background()
	logger := zerolog.Nop()

	mem := kv.NewMemory()
	saver := store.SaverFunc(func(namespace string, payload []byte) {
		if err := mem.Set(ctx, namespace, string(payload)); err != nil {
			log.Printf("save %s: %v", namespace, err)
		}
	})

	session := store.NewSession(ctx, mem, saver, &logger)
	conv := store.NewConversation(ctx, mem, saver, &logger)
	sim := backend.NewSimulatedWithDelays(&logger, time.Millisecond, time.Millisecond, time.Millisecond, 0)

	// 1. OTP sign-in
	if err := sim.SendOTP(ctx, "9123456789", "+98"); err != nil {
		log.Fatalf("send otp: %v", err)
	}
	ok, err := sim.VerifyOTP(ctx, "123456")
	if err != nil || !ok {
		log.Fatalf("verify otp: ok=%v err=%v", ok, err)
	}
	user := model.NewUser("9123456789", "+98")
	session.Authenticate(user)
	log.Printf("authenticated user %s", user.ID)

	// 2. Chatroom lifecycle
	trip := conv.CreateChatroom("Trip Planning")
	work := conv.CreateChatroom("Work Notes")
	conv.SelectChatroom(trip.ID)
	log.Printf("created %d chatrooms, selected %q", len(conv.Chatrooms()), trip.Title)

	// 3. Message exchange
	conv.AppendMessage(trip.ID, "Where should we go in October?", true, "")
	reply, err := sim.GenerateReply(ctx, "Where should we go in October?")
	if err != nil {
		log.Fatalf("generate reply: %v", err)
	}
	conv.AppendMessage(trip.ID, reply, false, "")
	if room, ok := conv.Chatroom(trip.ID); ok {
		log.Printf("room %q now has %d messages, last: %q", room.Title, len(room.Messages), room.LastMessage)
	}

	// 4. History pagination
	older := conv.LoadOlderMessages(trip.ID)
	log.Printf("loaded %d older messages, oldest: %q", len(older), older[0].Content)
	older = conv.LoadOlderMessages(trip.ID)
	log.Printf("loaded %d more, oldest now: %q", len(older), older[0].Content)

	// 5. UI flags
	conv.SetSearchQuery("trip")
	conv.ToggleDarkMode()
	log.Printf("search=%q darkMode=%v", conv.SearchQuery(), conv.DarkMode())

	// 6. Cleanup
	conv.DeleteChatroom(work.ID)
	session.Logout()

	// 7. Rehydrate from the persisted snapshots
	session2 := store.NewSession(ctx, mem, store.NopSaver, &logger)
	conv2 := store.NewConversation(ctx, mem, store.NopSaver, &logger)
	log.Printf("after reload: authenticated=%v chatrooms=%d darkMode=%v",
		session2.IsAuthenticated(), len(conv2.Chatrooms()), conv2.DarkMode())
}

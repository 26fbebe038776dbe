package services

import (
	"fmt"
	"html"
	"strings"
)

const emailFooter = "Волонтерский Портал Росатома"

// emailLayout wraps body in the shared layout. All interpolated values must
// already be escaped.
func emailLayout(heading, body string) string {
	var sb strings.Builder
	sb.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	sb.WriteString(fmt.Sprintf(`<h2 style="color: #0284c7;">%s</h2>`, heading))
	sb.WriteString("<p>Здравствуйте!</p>")
	sb.WriteString(body)
	sb.WriteString(`<hr style="margin: 30px 0; border: none; border-top: 1px solid #e5e7eb;">`)
	sb.WriteString(fmt.Sprintf(`<p style="color: #9ca3af; font-size: 12px;">%s</p>`, emailFooter))
	sb.WriteString("</div>")
	return sb.String()
}

func emailCard(title, subtitle string) string {
	card := fmt.Sprintf(`<div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;"><h3 style="margin: 0;">%s</h3>`, html.EscapeString(title))
	if subtitle != "" {
		card += fmt.Sprintf(`<p style="margin: 10px 0 0 0; color: #6b7280;">%s</p>`, html.EscapeString(subtitle))
	}
	return card + "</div>"
}

func emailButton(href, label string) string {
	return fmt.Sprintf(`<a href="%s" style="display: inline-block; background-color: #0284c7; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 20px 0;">%s</a>`,
		html.EscapeString(href), html.EscapeString(label))
}

func participationApprovedEmail(eventTitle string) string {
	return emailLayout("Ваша заявка одобрена!",
		"<p>Ваша заявка на участие в мероприятии была одобрена:</p>"+
			emailCard(eventTitle, "")+
			"<p>Спасибо за вашу готовность помочь!</p>")
}

func ngoApprovedEmail(appURL, ngoName string) string {
	return emailLayout("Ваша организация одобрена!",
		fmt.Sprintf("<p>Рады сообщить, что организация &laquo;%s&raquo; прошла модерацию и теперь доступна на портале.</p>", html.EscapeString(ngoName))+
			"<p>Теперь вы можете:</p><ul><li>Создавать мероприятия</li><li>Управлять профилем организации</li><li>Добавлять проекты</li><li>Взаимодействовать с волонтерами</li></ul>"+
			emailButton(appURL+"/dashboard", "Перейти в личный кабинет"))
}

func newVolunteerEmail(appURL, volunteerName, eventTitle string) string {
	return emailLayout("Новый волонтер записался на мероприятие",
		fmt.Sprintf("<p>Волонтер %s записался на ваше мероприятие:</p>", html.EscapeString(volunteerName))+
			emailCard(eventTitle, "")+
			emailButton(appURL+"/dashboard/events", "Управление мероприятиями"))
}

func eventReminderEmail(eventTitle, date string) string {
	return emailLayout("Напоминание о мероприятии",
		"<p>Напоминаем, что скоро состоится мероприятие, на которое вы записались:</p>"+
			emailCard(eventTitle, "Дата: "+date)+
			"<p>До встречи!</p>")
}
